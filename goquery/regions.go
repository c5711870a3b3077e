package goquery

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesense"
)

// regionSpec is one named structural region with candidate selectors in
// priority order. The first selector that matches wins.
type regionSpec struct {
	name        string
	contentType string
	selectors   []string
}

var regionSpecs = []regionSpec{
	{"header", "navigation", []string{"header", "#header", ".site-header", "[role='banner']"}},
	{"nav", "navigation", []string{"nav", "[role='navigation']", ".navbar", "#nav"}},
	{"main", "content", []string{"main", "[role='main']", "#main", ".main-content", "#content"}},
	{"sidebar", "supplementary", []string{"aside", ".sidebar", "#sidebar"}},
	{"footer", "navigation", []string{"footer", "#footer", ".site-footer", "[role='contentinfo']"}},
	{"pricing", "commerce", []string{"[itemprop='price']", ".price", ".pricing", "[class*='price']"}},
	{"reviews", "social", []string{"#reviews", ".reviews", "[itemprop='review']", "[class*='review']"}},
	{"media", "media", []string{".gallery", ".carousel", "figure", ".media"}},
	{"forms", "interactive", []string{"form"}},
}

// identifyContentRegions locates named structural regions. Confidence grows
// with the number of matched elements and gets a bump for specific (ID or
// attribute) selectors, capped at 0.95.
func identifyContentRegions(doc *goquery.Document) []pagesense.ContentRegion {
	var regions []pagesense.ContentRegion
	for _, spec := range regionSpecs {
		for _, sel := range spec.selectors {
			count := doc.Find(sel).Length()
			if count == 0 {
				continue
			}
			regions = append(regions, pagesense.ContentRegion{
				Name:         spec.name,
				Selector:     sel,
				Confidence:   regionConfidence(sel, count),
				ContentType:  spec.contentType,
				ElementCount: count,
			})
			break
		}
	}
	return regions
}

func regionConfidence(selector string, count int) float64 {
	conf := math.Min(0.9, 0.5+0.1*float64(count))
	if strings.HasPrefix(selector, "#") || strings.HasPrefix(selector, "[") {
		conf = math.Min(0.95, conf+0.1)
	}
	return conf
}
