package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fwojciec/pagesense/bloom"
	"github.com/fwojciec/pagesense/pipeline"
	"golang.org/x/sync/errgroup"
)

// Run executes the batch command: it extracts every unique URL from the
// input file concurrently and writes one JSON result per line.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := c.readURLs()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to extract")
	}

	var mu sync.Mutex
	encoder := json.NewEncoder(deps.Stdout)

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)

	var failures int
	for _, url := range urls {
		g.Go(func() error {
			result := deps.Extractor.Extract(ctx, url, pipeline.Options{
				Intent:    c.Intent,
				SkipCache: c.SkipCache,
			})

			mu.Lock()
			defer mu.Unlock()
			if !result.Success {
				failures++
			}
			return encoder.Encode(result)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stderr, "extracted %d URLs, %d failed\n", len(urls), failures)
	return nil
}

// readURLs reads the input list, skipping blank lines, comments, and
// duplicate URLs.
func (c *BatchCmd) readURLs() ([]string, error) {
	var r io.Reader
	if c.File == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer f.Close()
		r = f
	}

	seen := bloom.NewFilter(100000, 0.001)
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen.Seen(line) {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}
