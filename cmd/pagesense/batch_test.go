package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/pagesense"
	main "github.com/fwojciec/pagesense/cmd/pagesense"
	"github.com/fwojciec/pagesense/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeURLFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644))
	return path
}

func TestBatchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("extracts each unique URL once", func(t *testing.T) {
		t.Parallel()

		var captures atomic.Int64
		capturer := &mock.Capturer{
			CapturePageFn: func(_ context.Context, url string, _ pagesense.CaptureOptions) (*pagesense.PageState, error) {
				captures.Add(1)
				return &pagesense.PageState{
					URL:      url,
					Title:    "Page",
					HTML:     "<html><body>ok</body></html>",
					Snapshot: `[0] document: "Page"`,
				}, nil
			},
		}

		path := writeURLFile(t,
			"https://example.com/products/1",
			"# a comment",
			"",
			"https://example.com/products/2",
			"https://example.com/products/1", // duplicate
		)

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Extractor: testPipeline(capturer),
		}

		cmd := &main.BatchCmd{File: path, Concurrency: 2, SkipCache: true}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, int64(2), captures.Load())
		assert.Equal(t, 2, strings.Count(stdout.String(), "\n"))
		assert.Contains(t, stderr.String(), "extracted 2 URLs, 0 failed")
	})

	t.Run("counts failed extractions", func(t *testing.T) {
		t.Parallel()

		capturer := &mock.Capturer{
			CapturePageFn: func(context.Context, string, pagesense.CaptureOptions) (*pagesense.PageState, error) {
				return nil, pagesense.Errorf(pagesense.ENAVIGATION, "page responded with status 500")
			},
		}

		path := writeURLFile(t, "https://example.com/a", "https://example.com/b")

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    &bytes.Buffer{},
			Stderr:    stderr,
			Extractor: testPipeline(capturer),
		}

		cmd := &main.BatchCmd{File: path, Concurrency: 1, SkipCache: true}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stderr.String(), "extracted 2 URLs, 2 failed")
	})

	t.Run("empty input is an error", func(t *testing.T) {
		t.Parallel()

		path := writeURLFile(t, "# only comments")
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    &bytes.Buffer{},
			Stderr:    &bytes.Buffer{},
			Extractor: testPipeline(workingCapturer()),
		}

		cmd := &main.BatchCmd{File: path, Concurrency: 1}
		require.Error(t, cmd.Run(deps))
	})
}
