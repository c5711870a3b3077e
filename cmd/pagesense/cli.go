package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/pipeline"
	"github.com/fwojciec/pagesense/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	DB        *sqlite.DB
	Extractor *pipeline.Extractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract structured content from a URL"`
	Batch   BatchCmd   `cmd:"" help:"Extract structured content from a list of URLs"`
	Health  HealthCmd  `cmd:"" help:"Report component health"`

	Completer   string  `enum:"gemini,openai,none" default:"none" help:"Completion service to use (gemini, openai, none)"`
	MaxBrowsers int     `default:"5" help:"Maximum concurrent browser instances"`
	RPS         float64 `name:"rps" default:"1" help:"Per-domain requests per second"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL         string        `arg:"" help:"Page URL to extract"`
	Intent      string        `short:"i" help:"What to look for on the page"`
	Format      string        `enum:"json,markdown,natural" default:"json" help:"Output format"`
	SkipCache   bool          `help:"Bypass the extraction cache"`
	Screenshot  bool          `help:"Capture a page screenshot"`
	WaitForIdle bool          `help:"Wait for loading indicators to settle"`
	Timeout     time.Duration `default:"30s" help:"Navigation timeout"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string `arg:"" help:"File with one URL per line, or - for stdin"`
	Intent      string `short:"i" help:"What to look for on each page"`
	Concurrency int    `short:"c" default:"5" help:"Concurrent extraction limit"`
	SkipCache   bool   `help:"Bypass the extraction cache"`
}

// HealthCmd is the "health" subcommand.
type HealthCmd struct{}

func (c *ExtractCmd) outputFormat() pagesense.OutputFormat {
	return pagesense.OutputFormat(c.Format)
}
