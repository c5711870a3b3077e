package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/cache"
	"github.com/fwojciec/pagesense/classify"
	"github.com/fwojciec/pagesense/format"
	"github.com/fwojciec/pagesense/gemini"
	"github.com/fwojciec/pagesense/goquery"
	"github.com/fwojciec/pagesense/htmltomarkdown"
	"github.com/fwojciec/pagesense/openai"
	"github.com/fwojciec/pagesense/pipeline"
	"github.com/fwojciec/pagesense/rod"
	"github.com/fwojciec/pagesense/semantic"
	pagesenseslog "github.com/fwojciec/pagesense/slog"
	"github.com/fwojciec/pagesense/sqlite"
	"github.com/fwojciec/pagesense/trafilatura"
	openaisdk "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache database path. Set before calling Run().
	DBPath string

	// SQLite database backing the extraction cache.
	DB *sqlite.DB

	pool *rod.Pool
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.pool != nil {
		_ = m.pool.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagesense"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagesense --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))

	// Open the cache database. Cache trouble is never fatal to extraction,
	// so a failed open just drops the persistent tier.
	var kv pagesense.KV
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		logger.Warn("cache database unavailable, using in-process cache only", "path", m.DBPath, "error", err)
		m.DB = nil
	} else {
		kv = sqlite.NewKVService(m.DB)
	}
	defer m.Close()

	completer, err := m.buildCompleter(ctx, cli.Completer, stderr)
	if err != nil {
		return err
	}

	m.pool = rod.NewPool(
		rod.WithMaxBrowsers(cli.MaxBrowsers),
		rod.WithLogger(logger),
	)
	capturer := &rod.Capturer{
		Pool:      m.pool,
		Converter: htmltomarkdown.NewConverter(),
		Logger:    logger,
	}

	cacheOpts := []cache.Option{cache.WithLogger(logger)}
	if kv != nil {
		cacheOpts = append(cacheOpts, cache.WithRemote(kv))
	}

	deps.Extractor = &pipeline.Extractor{
		Capturer: pagesenseslog.NewLoggingCapturer(capturer, logger),
		Analyzer: &goquery.Analyzer{},
		Classifier: pagesenseslog.NewLoggingClassifier(&classify.Classifier{
			Completer: completer,
			Logger:    logger,
		}, logger),
		Fields: &semantic.Extractor{
			Completer: completer,
			Articles:  trafilatura.NewExtractor(),
			Logger:    logger,
		},
		Cache:     pagesenseslog.NewLoggingPatternCache(cache.New(cacheOpts...), logger),
		Formatter: format.NewFormatter(logger),
		Limiter:   pipeline.NewDomainLimiter(cli.RPS),
		Logger:    logger,
	}

	return kongCtx.Run(deps)
}

// buildCompleter selects the completion service. "none" runs the pipeline
// on its heuristic fallbacks only.
func (m *Main) buildCompleter(ctx context.Context, name string, stderr io.Writer) (pagesense.Completer, error) {
	switch name {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewCompleter(client), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "OPENAI_API_KEY environment variable not set.")
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return openai.NewCompleter(openaisdk.NewClient(apiKey), os.Getenv("OPENAI_MODEL")), nil
	default:
		return nil, nil
	}
}

func defaultDBPath() string {
	if path := os.Getenv("PAGESENSE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagesense.db"
	}
	dir := filepath.Join(home, ".pagesense")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagesense.db")
}
