package classify

import (
	"strings"

	"github.com/fwojciec/pagesense"
)

// Keyword buckets for the heuristic fallback. Matches against the URL,
// title, and snapshot text.
var heuristicBuckets = []struct {
	category pagesense.PageType
	keywords []string
}{
	{pagesense.PageTypeCampground, []string{"campground", "campsite", "camping", "rv park", "hookups"}},
	{pagesense.PageTypeProduct, []string{"add to cart", "buy now", "product", "price", "in stock"}},
	{pagesense.PageTypeArticle, []string{"article", "blog", "news", "published", "author"}},
}

// heuristic is the degradation path when the completion service cannot be
// used: keyword buckets yield confidence between 0.3 and 0.6.
func (c *Classifier) heuristic(state *pagesense.PageState) *pagesense.Classification {
	haystack := strings.ToLower(state.URL + "\n" + state.Title + "\n" + truncate(state.Snapshot, snapshotCap))

	bestCategory := pagesense.PageTypeUnknown
	bestHits := 0
	for _, bucket := range heuristicBuckets {
		hits := 0
		for _, kw := range bucket.keywords {
			if strings.Contains(haystack, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestCategory = bucket.category
			bestHits = hits
		}
	}

	confidence := 0.3
	if bestHits > 0 {
		// 0.4 for a single hit, stepping up to 0.6.
		confidence = 0.3 + 0.1*float64(bestHits)
		if confidence > 0.6 {
			confidence = 0.6
		}
	}

	return &pagesense.Classification{
		Category:   bestCategory,
		Confidence: confidence,
		Reasoning:  "keyword heuristic",
		Method:     pagesense.ClassifyMethodHeuristic,
	}
}
