package pagesense

// PageType is the closed set of page categories the pipeline recognizes.
type PageType string

// Page type constants. Declaration order matters: DOM analysis breaks
// scoring ties in favor of the earlier type.
const (
	PageTypeProduct    PageType = "PRODUCT"
	PageTypeCampground PageType = "CAMPGROUND"
	PageTypeBusiness   PageType = "BUSINESS"
	PageTypeArticle    PageType = "ARTICLE"
	PageTypeComparison PageType = "COMPARISON"
	PageTypeListing    PageType = "LISTING"
	PageTypeForm       PageType = "FORM"
	PageTypeUnknown    PageType = "UNKNOWN"
)

// PageTypes lists all page types in declaration (tie-break) order.
func PageTypes() []PageType {
	return []PageType{
		PageTypeProduct,
		PageTypeCampground,
		PageTypeBusiness,
		PageTypeArticle,
		PageTypeComparison,
		PageTypeListing,
		PageTypeForm,
		PageTypeUnknown,
	}
}

// ValidPageType reports whether t is a member of the closed page type set.
func ValidPageType(t PageType) bool {
	for _, pt := range PageTypes() {
		if pt == t {
			return true
		}
	}
	return false
}

// ContentRegion is a named structural region of a page (header, main,
// nav, ...). Confidence increases with selector specificity and element
// count, capped at 0.95.
type ContentRegion struct {
	Name         string  `json:"name"`
	Selector     string  `json:"selector"`
	Confidence   float64 `json:"confidence"`
	ContentType  string  `json:"contentType"`
	ElementCount int     `json:"elementCount"`
}

// DOMAnalysis is the heuristic structural read of a page, produced without
// any external model call.
type DOMAnalysis struct {
	PageType        PageType            `json:"pageType"`
	Regions         []ContentRegion     `json:"regions"`
	Elements        map[int]ElementInfo `json:"elements"`
	PrimarySelector string              `json:"primarySelector,omitempty"`
	NavItems        []string            `json:"navItems,omitempty"`
	FormFields      []string            `json:"formFields,omitempty"`
}

// Analyzer produces a DOMAnalysis from a captured page's HTML and rendered
// snapshot. Only a structurally unparseable document is fatal (EANALYSIS);
// every other step degrades to an empty or default result.
type Analyzer interface {
	Analyze(state *PageState) (*DOMAnalysis, error)
}
