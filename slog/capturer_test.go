package slog_test

import (
	"bytes"
	"context"
	stdslog "log/slog"
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/mock"
	pagesenseslog "github.com/fwojciec/pagesense/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) *stdslog.Logger {
	return stdslog.New(stdslog.NewTextHandler(buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))
}

func TestLoggingCapturer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	state := &pagesense.PageState{URL: "https://example.com", HTML: "<html></html>", Snapshot: `[0] document: "Example"`}
	capturer := pagesenseslog.NewLoggingCapturer(&mock.Capturer{
		CapturePageFn: func(context.Context, string, pagesense.CaptureOptions) (*pagesense.PageState, error) {
			return state, nil
		},
	}, testLogger(&buf))

	got, err := capturer.CapturePage(context.Background(), "https://example.com", pagesense.CaptureOptions{})
	require.NoError(t, err)
	assert.Same(t, state, got)
	assert.Contains(t, buf.String(), "page capture")
	assert.Contains(t, buf.String(), "url=https://example.com")
}

func TestLoggingClassifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	classifier := pagesenseslog.NewLoggingClassifier(&mock.Classifier{
		ClassifyFn: func(context.Context, *pagesense.PageState) *pagesense.Classification {
			return &pagesense.Classification{Category: pagesense.PageTypeProduct, Confidence: 0.8, Method: pagesense.ClassifyMethodModel}
		},
	}, testLogger(&buf))

	result := classifier.Classify(context.Background(), &pagesense.PageState{URL: "https://example.com"})
	assert.Equal(t, pagesense.PageTypeProduct, result.Category)
	assert.Contains(t, buf.String(), "page classification")
	assert.Contains(t, buf.String(), "category=PRODUCT")
}

func TestLoggingPatternCache(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cache := pagesenseslog.NewLoggingPatternCache(&mock.PatternCache{}, testLogger(&buf))

	_, hit := cache.GetCachedExtraction(context.Background(), "https://example.com", "")
	assert.False(t, hit)
	assert.Contains(t, buf.String(), "extraction cache lookup")
	assert.Contains(t, buf.String(), "hit=false")
}
