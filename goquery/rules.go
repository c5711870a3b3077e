package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesense"
)

// Rule match weights. A page type needs at least scoreThreshold to beat
// UNKNOWN.
const (
	selectorWeight = 2.0
	keywordWeight  = 1.0
	metaWeight     = 1.5
	urlHintWeight  = 0.5
	scoreThreshold = 2.0
)

// typeRule is the static rule set for one page type. Selector evaluation is
// independently fault-tolerant: an invalid selector matches nothing instead
// of failing the rule.
type typeRule struct {
	selectors    []string
	keywords     []string
	metaPatterns []*regexp.Regexp
	urlHints     []string
}

var typeRules = map[pagesense.PageType]typeRule{
	pagesense.PageTypeProduct: {
		selectors: []string{
			".add-to-cart", "[class*='add-to-cart']", "[itemtype*='Product']",
			".product-price", "#buy-now", "[class*='product-detail']",
		},
		keywords:     []string{"add to cart", "buy now", "in stock", "free shipping", "sku"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)og:type.*product|product.*schema`)},
		urlHints:     []string{"/product", "/item", "/p/", "/shop/"},
	},
	pagesense.PageTypeCampground: {
		selectors: []string{
			".campsite", "[class*='campground']", ".amenities", ".site-list",
			"[class*='reservation']",
		},
		keywords:     []string{"campground", "campsite", "rv park", "tent", "hookups", "check-in", "amenities"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)campground|camping|rv park`)},
		urlHints:     []string{"/campground", "/camping", "/rv-park", "/poi"},
	},
	pagesense.PageTypeBusiness: {
		selectors: []string{
			"[itemtype*='LocalBusiness']", ".business-hours", ".contact-info",
			"[class*='store-hours']",
		},
		keywords:     []string{"opening hours", "contact us", "directions", "call us", "our location"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)og:type.*business|local.?business`)},
		urlHints:     []string{"/business", "/contact", "/location", "/about"},
	},
	pagesense.PageTypeArticle: {
		selectors: []string{
			"[itemtype*='Article']", ".article-body", ".byline", "article .author",
		},
		keywords:     []string{"published", "min read", "posted on", "by the author", "share this article"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)og:type.*article`)},
		urlHints:     []string{"/article", "/blog", "/news", "/post"},
	},
	pagesense.PageTypeComparison: {
		selectors: []string{
			".comparison-table", "table[class*='compare']", "[class*='versus']",
		},
		keywords:     []string{"versus", " vs ", "comparison", "pros and cons", "side by side"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)compar(e|ison)`)},
		urlHints:     []string{"/compare", "/vs", "/versus"},
	},
	pagesense.PageTypeListing: {
		selectors: []string{
			".search-results", ".results-list", "[class*='listing-grid']",
			"[class*='result-item']",
		},
		keywords:     []string{"sort by", "filter", "showing results", "per page", "refine"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)search results|listings`)},
		urlHints:     []string{"/search", "/listings", "/results", "/category"},
	},
	pagesense.PageTypeForm: {
		selectors: []string{
			"form[action]", ".form-group", "input[type='submit']",
		},
		keywords:     []string{"required fields", "sign up", "register", "subscribe", "submit"},
		metaPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)sign.?up|registration`)},
		urlHints:     []string{"/signup", "/register", "/subscribe", "/contact-form"},
	},
}

// classifyPageType scores every page type against its rule set and returns
// the winner. Ties favor the enum's declared order; a best score below the
// threshold yields UNKNOWN.
func classifyPageType(doc *goquery.Document, pageURL string) pagesense.PageType {
	bodyText := strings.ToLower(doc.Find("body").Text())
	metaText := collectMetaText(doc)
	lowerURL := strings.ToLower(pageURL)

	best := pagesense.PageTypeUnknown
	bestScore := 0.0

	for _, pt := range pagesense.PageTypes() {
		rule, ok := typeRules[pt]
		if !ok {
			continue
		}
		score := scoreRule(doc, rule, bodyText, metaText, lowerURL)
		if score > bestScore {
			best = pt
			bestScore = score
		}
	}

	if bestScore < scoreThreshold {
		return pagesense.PageTypeUnknown
	}
	return best
}

func scoreRule(doc *goquery.Document, rule typeRule, bodyText, metaText, lowerURL string) float64 {
	var score float64
	for _, sel := range rule.selectors {
		if doc.Find(sel).Length() > 0 {
			score += selectorWeight
		}
	}
	for _, kw := range rule.keywords {
		if strings.Contains(bodyText, kw) {
			score += keywordWeight
		}
	}
	for _, re := range rule.metaPatterns {
		if re.MatchString(metaText) {
			score += metaWeight
		}
	}
	for _, hint := range rule.urlHints {
		if strings.Contains(lowerURL, hint) {
			score += urlHintWeight
		}
	}
	return score
}

// collectMetaText concatenates meta tag names, properties, and contents
// into one string for pattern matching.
func collectMetaText(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range []string{"name", "property", "content"} {
			if v, ok := sel.Attr(attr); ok {
				if attr != "content" {
					sb.WriteString(v)
					sb.WriteString(" ")
				} else {
					sb.WriteString(v)
					sb.WriteString("\n")
				}
			}
		}
	})
	return sb.String()
}
