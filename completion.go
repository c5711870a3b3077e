package pagesense

import (
	"context"
	"time"
)

// Completer is the completion-service port: given a prompt, it returns
// free-form text. The service may be slow, rate-limited, or unavailable;
// callers must treat failures as a signal to degrade, never as fatal.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML content into Markdown.
	Convert(html string) (string, error)
}

// Article holds the main content extracted from an article-like page.
type Article struct {
	Title     string
	Text      string
	Author    string
	Published time.Time
}

// ArticleExtractor pulls the main article content out of raw HTML,
// discarding boilerplate. Used by the article-category fallback path.
type ArticleExtractor interface {
	ExtractArticle(html, pageURL string) (*Article, error)
}
