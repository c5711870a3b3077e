package semantic

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesense"
)

// priceRe matches dollar-style prices anywhere in visible text.
var priceRe = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{2})?`)

// phoneRe matches common phone number shapes.
var phoneRe = regexp.MustCompile(`\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}`)

// fallback performs DOM-heuristic extraction with fixed selector lookups.
// The result always carries title, url, and the fallback marker, so the
// pipeline never sees an empty field map.
func (e *Extractor) fallback(state *pagesense.PageState, category pagesense.PageType) map[string]any {
	data := map[string]any{
		"url":                         state.URL,
		"title":                       state.Title,
		pagesense.ExtractionMethodKey: "fallback",
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(state.HTML))
	if err != nil {
		return data
	}

	if data["title"] == "" {
		data["title"] = firstText(doc, "h1", "title")
	}
	if desc, ok := state.Metadata["meta:description"]; ok && desc != "" {
		data["description"] = desc
	}

	switch category {
	case pagesense.PageTypeProduct:
		e.fallbackProduct(doc, data)
	case pagesense.PageTypeCampground:
		e.fallbackCampground(doc, data)
	case pagesense.PageTypeBusiness:
		e.fallbackBusiness(doc, data)
	case pagesense.PageTypeArticle:
		e.fallbackArticle(doc, state, data)
	case pagesense.PageTypeComparison:
		e.fallbackComparison(doc, data)
	case pagesense.PageTypeListing:
		e.fallbackListing(doc, data)
	case pagesense.PageTypeForm:
		e.fallbackForm(doc, data)
	default:
		e.fallbackGeneric(doc, data)
	}

	return data
}

func (e *Extractor) fallbackProduct(doc *goquery.Document, data map[string]any) {
	if name := firstText(doc, "[itemprop='name']", ".product-title", "h1"); name != "" {
		data["name"] = name
	}
	if price := findPrice(doc); price != "" {
		data["price"] = price
	}
	if avail := firstText(doc, ".availability", ".in-stock", "[itemprop='availability']"); avail != "" {
		data["availability"] = avail
	}
}

func (e *Extractor) fallbackCampground(doc *goquery.Document, data map[string]any) {
	if name := firstText(doc, "[itemprop='name']", "h1"); name != "" {
		data["name"] = name
	}
	if addr := firstText(doc, "[itemprop='address']", ".address", "address"); addr != "" {
		data["address"] = addr
	}
	var amenities []string
	doc.Find(".amenities li, [class*='amenity']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			amenities = append(amenities, t)
		}
		return len(amenities) < 20
	})
	if len(amenities) > 0 {
		data["amenities"] = amenities
	}
	if phone := findPhone(doc); phone != "" {
		data["phone"] = phone
	}
	if price := findPrice(doc); price != "" {
		data["price_per_night"] = price
	}
}

func (e *Extractor) fallbackBusiness(doc *goquery.Document, data map[string]any) {
	if name := firstText(doc, "[itemprop='name']", "h1"); name != "" {
		data["name"] = name
	}
	if addr := firstText(doc, "[itemprop='address']", ".address", "address"); addr != "" {
		data["address"] = addr
	}
	if phone := findPhone(doc); phone != "" {
		data["phone"] = phone
	}
	if hours := firstText(doc, ".hours", ".business-hours", "[itemprop='openingHours']"); hours != "" {
		data["hours"] = hours
	}
}

func (e *Extractor) fallbackArticle(doc *goquery.Document, state *pagesense.PageState, data map[string]any) {
	if e.Articles != nil {
		if article, err := e.Articles.ExtractArticle(state.HTML, state.URL); err == nil && article != nil {
			if article.Title != "" {
				data["title"] = article.Title
			}
			if article.Text != "" {
				data["summary"] = truncate(article.Text, 2000)
			}
			if article.Author != "" {
				data["author"] = article.Author
			}
			if !article.Published.IsZero() {
				data["published"] = article.Published.Format("2006-01-02")
			}
			return
		}
	}
	if author := firstText(doc, "[rel='author']", ".byline", "[itemprop='author']"); author != "" {
		data["author"] = author
	}
}

func (e *Extractor) fallbackComparison(doc *goquery.Document, data map[string]any) {
	var items []string
	doc.Find("table th").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			items = append(items, t)
		}
		return len(items) < 10
	})
	if len(items) > 0 {
		data["items"] = items
	}
}

func (e *Extractor) fallbackListing(doc *goquery.Document, data map[string]any) {
	var items []string
	doc.Find(".search-results a, .results-list a, [class*='listing'] a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			items = append(items, t)
		}
		return len(items) < 10
	})
	if len(items) > 0 {
		data["items"] = items
	}
}

func (e *Extractor) fallbackForm(doc *goquery.Document, data map[string]any) {
	var fields []string
	doc.Find("form input, form select, form textarea").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if typ, _ := sel.Attr("type"); typ == "hidden" {
			return true
		}
		if name, ok := sel.Attr("name"); ok && name != "" {
			fields = append(fields, name)
		}
		return len(fields) < 30
	})
	if len(fields) > 0 {
		data["fields"] = fields
	}
	if label := firstText(doc, "form button[type='submit']", "form input[type='submit']"); label != "" {
		data["submit_label"] = label
	}
}

func (e *Extractor) fallbackGeneric(doc *goquery.Document, data map[string]any) {
	var headings []string
	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			headings = append(headings, t)
		}
		return len(headings) < 5
	})
	if len(headings) > 0 {
		data["key_facts"] = headings
	}
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// findPrice looks for a price in the usual places, scanning the whole body
// text as a last resort.
func findPrice(doc *goquery.Document) string {
	for _, sel := range []string{"[itemprop='price']", ".price", "[class*='price']"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			if m := priceRe.FindString(t); m != "" {
				return m
			}
			return t
		}
	}
	return priceRe.FindString(doc.Find("body").Text())
}

func findPhone(doc *goquery.Document) string {
	if href, ok := doc.Find("a[href^='tel:']").First().Attr("href"); ok {
		return strings.TrimPrefix(href, "tel:")
	}
	return phoneRe.FindString(doc.Find("body").Text())
}
