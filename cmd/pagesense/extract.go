package main

import (
	"fmt"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/pipeline"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	opts := pipeline.Options{
		Intent:      c.Intent,
		SkipCache:   c.SkipCache,
		Screenshot:  c.Screenshot,
		WaitForIdle: c.WaitForIdle,
		Timeout:     c.Timeout,
	}

	out, result, err := deps.Extractor.ExtractFormatted(deps.Ctx, c.URL, c.outputFormat(), opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagesense.ErrorMessage(err))
		return err
	}

	if !result.Success {
		for _, msg := range result.Errors {
			fmt.Fprintf(deps.Stderr, "error: %s\n", msg)
		}
		return pagesense.Errorf(pagesense.EINTERNAL, "extraction failed: %s", result.Errors[0])
	}

	fmt.Fprintln(deps.Stdout, out)
	return nil
}
