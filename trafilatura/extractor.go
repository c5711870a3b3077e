// Package trafilatura adapts go-trafilatura for article content extraction.
package trafilatura

import (
	"net/url"
	"strings"

	"github.com/fwojciec/pagesense"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements pagesense.ArticleExtractor at compile time.
var _ pagesense.ArticleExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main article content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractArticle processes raw HTML and returns the main article content
// with boilerplate removed.
func (e *Extractor) ExtractArticle(rawHTML, pageURL string) (*pagesense.Article, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagesense.Errorf(pagesense.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(pageURL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	return &pagesense.Article{
		Title:     result.Metadata.Title,
		Text:      result.ContentText,
		Author:    result.Metadata.Author,
		Published: result.Metadata.Date,
	}, nil
}
