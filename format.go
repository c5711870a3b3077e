package pagesense

// OutputFormat selects how extracted data is rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
	FormatNatural  OutputFormat = "natural"
)

// ValidOutputFormat reports whether f is a supported output format.
func ValidOutputFormat(f OutputFormat) bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatNatural:
		return true
	}
	return false
}

// Formatter renders an extracted field map. It is a total function: it must
// never panic or error for malformed input data — a formatting failure is
// rendered as a visible error string instead of propagating.
type Formatter interface {
	Format(data map[string]any, category PageType, format OutputFormat) string
}
