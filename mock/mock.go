// Package mock provides hand-written mock implementations of the pagesense
// interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/pagesense"
)

var _ pagesense.Capturer = (*Capturer)(nil)

// Capturer is a mock implementation of pagesense.Capturer.
type Capturer struct {
	CapturePageFn func(ctx context.Context, url string, opts pagesense.CaptureOptions) (*pagesense.PageState, error)
}

func (c *Capturer) CapturePage(ctx context.Context, url string, opts pagesense.CaptureOptions) (*pagesense.PageState, error) {
	return c.CapturePageFn(ctx, url, opts)
}

var _ pagesense.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of pagesense.Analyzer.
type Analyzer struct {
	AnalyzeFn func(state *pagesense.PageState) (*pagesense.DOMAnalysis, error)
}

func (a *Analyzer) Analyze(state *pagesense.PageState) (*pagesense.DOMAnalysis, error) {
	return a.AnalyzeFn(state)
}

var _ pagesense.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of pagesense.Classifier.
type Classifier struct {
	ClassifyFn func(ctx context.Context, state *pagesense.PageState) *pagesense.Classification
}

func (c *Classifier) Classify(ctx context.Context, state *pagesense.PageState) *pagesense.Classification {
	return c.ClassifyFn(ctx, state)
}

var _ pagesense.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor is a mock implementation of pagesense.FieldExtractor.
type FieldExtractor struct {
	ExtractFn func(ctx context.Context, state *pagesense.PageState, category pagesense.PageType, intent string) map[string]any
}

func (e *FieldExtractor) Extract(ctx context.Context, state *pagesense.PageState, category pagesense.PageType, intent string) map[string]any {
	return e.ExtractFn(ctx, state, category, intent)
}

var _ pagesense.Completer = (*Completer)(nil)

// Completer is a mock implementation of pagesense.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, prompt string) (string, error)
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteFn(ctx, prompt)
}

var _ pagesense.Formatter = (*Formatter)(nil)

// Formatter is a mock implementation of pagesense.Formatter.
type Formatter struct {
	FormatFn func(data map[string]any, category pagesense.PageType, format pagesense.OutputFormat) string
}

func (f *Formatter) Format(data map[string]any, category pagesense.PageType, format pagesense.OutputFormat) string {
	return f.FormatFn(data, category, format)
}

var _ pagesense.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagesense.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
