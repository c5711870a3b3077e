// Package goquery implements heuristic DOM analysis: page type scoring,
// content region detection, and accessibility snapshot indexing. It makes
// no external model calls.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesense"
	"golang.org/x/net/html"
)

// Ensure Analyzer implements pagesense.Analyzer at compile time.
var _ pagesense.Analyzer = (*Analyzer)(nil)

// Analyzer produces a DOMAnalysis from captured page state.
type Analyzer struct{}

// Analyze performs the full heuristic read of a page. Only a structurally
// unparseable HTML document is fatal; every other step degrades to an
// empty or default result with a warning.
func (a *Analyzer) Analyze(state *pagesense.PageState) (*pagesense.DOMAnalysis, error) {
	if state == nil || strings.TrimSpace(state.HTML) == "" {
		return nil, pagesense.Errorf(pagesense.EANALYSIS, "empty HTML document")
	}
	root, err := html.Parse(strings.NewReader(state.HTML))
	if err != nil {
		return nil, pagesense.Errorf(pagesense.EANALYSIS, "unparseable HTML document: %v", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	analysis := &pagesense.DOMAnalysis{
		PageType: classifyPageType(doc, state.URL),
		Regions:  identifyContentRegions(doc),
		Elements: pagesense.ParseSnapshot(state.Snapshot),
	}
	analysis.PrimarySelector = primarySelector(doc)
	analysis.NavItems = navItems(doc)
	analysis.FormFields = formFields(doc)

	return analysis, nil
}

// HealthCheck reports healthy: the analyzer has no external dependencies.
func (a *Analyzer) HealthCheck(_ context.Context) pagesense.Health {
	return pagesense.Health{Status: pagesense.HealthHealthy}
}

// primaryCandidates are tried in order for the primary-content selector.
var primaryCandidates = []string{"main", "[role='main']", "article", "#main", "#content", ".main-content", ".content"}

func primarySelector(doc *goquery.Document) string {
	for _, sel := range primaryCandidates {
		if doc.Find(sel).Length() > 0 {
			return sel
		}
	}
	return ""
}

// navItems collects the visible text of navigation links, capped to keep
// the analysis compact.
func navItems(doc *goquery.Document) []string {
	const maxItems = 20
	seen := make(map[string]bool)
	var items []string
	doc.Find("nav a, [role='navigation'] a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text == "" || seen[text] {
			return true
		}
		seen[text] = true
		items = append(items, text)
		return len(items) < maxItems
	})
	return items
}

// formFields collects the names (falling back to types) of form inputs.
func formFields(doc *goquery.Document) []string {
	const maxFields = 30
	var fields []string
	doc.Find("form input, form select, form textarea").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if typ, _ := sel.Attr("type"); typ == "hidden" {
			return true
		}
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			name, _ = sel.Attr("type")
		}
		if name == "" {
			return true
		}
		fields = append(fields, name)
		return len(fields) < maxFields
	})
	return fields
}
