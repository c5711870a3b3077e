// Package format renders extracted field maps as JSON, Markdown, or
// natural-language text, with per-category templates and a generic fallback.
// Rendering is a total function: malformed data produces a visible error
// string, never a panic or an error return.
package format

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fwojciec/pagesense"
)

var _ pagesense.Formatter = (*Formatter)(nil)

// Formatter is a stateless renderer for extracted field maps.
type Formatter struct {
	Logger *slog.Logger
}

// NewFormatter creates a Formatter.
func NewFormatter(logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{Logger: logger}
}

// Format renders data for the given category in the requested output format.
// Unrecognized formats render as JSON.
func (f *Formatter) Format(data map[string]any, category pagesense.PageType, format pagesense.OutputFormat) (out string) {
	defer func() {
		if r := recover(); r != nil {
			f.Logger.Warn("formatter recovered from panic", "category", category, "format", format, "panic", r)
			out = fmt.Sprintf("Formatting error: %v", r)
		}
	}()

	switch format {
	case pagesense.FormatMarkdown:
		return f.markdown(data, category)
	case pagesense.FormatNatural:
		return f.natural(data, category)
	default:
		return f.structured(data)
	}
}

func (f *Formatter) structured(data map[string]any) string {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "unencodable data: "+err.Error())
	}
	return string(encoded)
}

func (f *Formatter) markdown(data map[string]any, category pagesense.PageType) string {
	var b strings.Builder

	title := stringField(data, "name", "title")
	if title == "" {
		title = "Extracted Content"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	switch category {
	case pagesense.PageTypeProduct:
		writeField(&b, "Price", stringField(data, "price"))
		writeField(&b, "Availability", stringField(data, "availability"))
		writeField(&b, "Brand", stringField(data, "brand"))
		writeField(&b, "Rating", stringField(data, "rating"))
		writeParagraph(&b, stringField(data, "description"))
	case pagesense.PageTypeCampground, pagesense.PageTypeBusiness:
		writeField(&b, "Address", stringField(data, "address"))
		writeField(&b, "Phone", stringField(data, "phone"))
		writeField(&b, "Price per night", stringField(data, "price_per_night"))
		writeField(&b, "Hours", stringField(data, "hours"))
		writeList(&b, "Amenities", listField(data, "amenities"))
		writeParagraph(&b, stringField(data, "description", "summary"))
	case pagesense.PageTypeComparison:
		writeList(&b, "Compared items", listField(data, "items", "columns"))
		writeParagraph(&b, stringField(data, "summary"))
	default:
		writeGenericMarkdown(&b, data)
	}

	if url := stringField(data, "url"); url != "" {
		fmt.Fprintf(&b, "\nSource: %s\n", url)
	}
	return b.String()
}

func (f *Formatter) natural(data map[string]any, category pagesense.PageType) string {
	name := stringField(data, "name", "title")
	if name == "" {
		name = "this page"
	}

	var sentences []string
	switch category {
	case pagesense.PageTypeProduct:
		s := name
		if price := stringField(data, "price"); price != "" {
			s += " is priced at " + price
		}
		if availability := stringField(data, "availability"); availability != "" {
			s += " and is currently " + strings.ToLower(availability)
		}
		sentences = append(sentences, s+".")
		if desc := stringField(data, "description"); desc != "" {
			sentences = append(sentences, desc)
		}
	case pagesense.PageTypeCampground, pagesense.PageTypeBusiness:
		s := name
		if address := stringField(data, "address"); address != "" {
			s += " is located at " + address
		}
		sentences = append(sentences, s+".")
		if amenities := listField(data, "amenities"); len(amenities) > 0 {
			sentences = append(sentences, "Amenities include "+joinNatural(amenities)+".")
		}
		if price := stringField(data, "price_per_night"); price != "" {
			sentences = append(sentences, "Rates start at "+price+" per night.")
		}
		if phone := stringField(data, "phone"); phone != "" {
			sentences = append(sentences, "Contact: "+phone+".")
		}
	case pagesense.PageTypeArticle:
		s := "The article is titled " + quote(name)
		if author := stringField(data, "author"); author != "" {
			s += " by " + author
		}
		sentences = append(sentences, s+".")
		if summary := stringField(data, "summary", "description"); summary != "" {
			sentences = append(sentences, summary)
		}
	default:
		sentences = append(sentences, "Here is what was found on "+name+":")
		for _, k := range sortedKeys(data) {
			if isInternalField(k) || k == "name" || k == "title" {
				continue
			}
			if v := stringValue(data[k]); v != "" {
				sentences = append(sentences, humanizeKey(k)+": "+v+".")
			}
		}
	}

	if len(sentences) == 0 {
		return "No information could be extracted from this page."
	}
	return strings.Join(sentences, " ")
}

func writeGenericMarkdown(b *strings.Builder, data map[string]any) {
	for _, k := range sortedKeys(data) {
		if isInternalField(k) || k == "name" || k == "title" || k == "url" {
			continue
		}
		switch v := data[k].(type) {
		case []any:
			writeList(b, humanizeKey(k), toStrings(v))
		default:
			writeField(b, humanizeKey(k), stringValue(v))
		}
	}
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "**%s:** %s\n\n", label, value)
}

func writeParagraph(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "%s\n\n", text)
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// stringField returns the first non-empty string value among keys.
func stringField(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := stringValue(data[k]); v != "" {
			return v
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return t.String()
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func listField(data map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := data[k].(type) {
		case []any:
			if items := toStrings(v); len(items) > 0 {
				return items
			}
		case []string:
			if len(v) > 0 {
				return v
			}
		}
	}
	return nil
}

func toStrings(values []any) []string {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if s := stringValue(v); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isInternalField(key string) bool {
	return strings.HasPrefix(key, "_")
}

func humanizeKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func quote(s string) string {
	return `"` + s + `"`
}
