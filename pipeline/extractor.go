// Package pipeline sequences the extraction stages per request: cache check,
// page capture, DOM analysis, classification, field extraction, and cache
// write. It owns the error taxonomy mapping and the caching policy.
package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/pagesense"
	"github.com/google/uuid"
)

// Result error categories. Capture and analysis failures are reported to
// callers under one of these, never as a raised error.
const (
	CategoryNavigationBlocked   = "navigation_blocked"
	CategoryNavigationTimeout   = "navigation_timeout"
	CategoryNavigationError     = "navigation_error"
	CategoryBrowserError        = "browser_error"
	CategoryUnknownBrowserError = "unknown_browser_error"
	CategoryDOMAnalysisError    = "dom_analysis_error"
)

// minCacheConfidence is the confidence below which successful results are
// not written to the cache.
const minCacheConfidence = 0.5

// minModelConfidence is the classification confidence below which the DOM
// analyzer's heuristic category overrides the model's, when it is not
// UNKNOWN.
const minModelConfidence = 0.5

// floorConfidence replaces a non-positive classification confidence, so a
// successful result always carries positive confidence. It sits below
// minCacheConfidence: floored results are never cached or learned.
const floorConfidence = 0.1

// Options control a single extraction request.
type Options struct {
	// Intent is an optional hint about what the caller wants from the page.
	// It participates in the cache key.
	Intent string

	// SkipCache bypasses both the cache lookup and the cache write.
	SkipCache bool

	// Screenshot requests a page screenshot alongside extraction.
	Screenshot bool

	// WaitForIdle waits for loading indicators to settle after navigation.
	WaitForIdle bool

	// Timeout bounds page navigation. Zero means the capture default.
	Timeout time.Duration
}

// Extractor runs the extraction stages for one URL. All stage dependencies
// are injected; Cache, Formatter, and Limiter are optional.
type Extractor struct {
	Capturer   pagesense.Capturer
	Analyzer   pagesense.Analyzer
	Classifier pagesense.Classifier
	Fields     pagesense.FieldExtractor
	Cache      pagesense.PatternCache
	Formatter  pagesense.Formatter
	Limiter    pagesense.DomainLimiter
	Logger     *slog.Logger
}

// Extract runs the full pipeline for url and always returns a result:
// expected failures (bad URL, timeout, blocked target) come back as a
// failed ExtractionResult, not an error.
func (e *Extractor) Extract(ctx context.Context, rawURL string, opts Options) *pagesense.ExtractionResult {
	start := time.Now()
	requestID := uuid.New().String()
	logger := e.logger().With("requestId", requestID, "url", rawURL)

	if !opts.SkipCache && e.Cache != nil {
		if cached, ok := e.Cache.GetCachedExtraction(ctx, rawURL, opts.Intent); ok {
			cached.ProcessingTime = time.Since(start)
			logger.Info("extraction served from cache", "pageType", cached.PageType)
			return cached
		}
	}

	if e.Limiter != nil {
		if domain := domainOf(rawURL); domain != "" {
			if err := e.Limiter.Wait(ctx, domain); err != nil {
				logger.Warn("rate limit wait canceled", "error", err)
				return e.failure(rawURL, requestID, start, CategoryNavigationTimeout, err)
			}
		}
	}

	logger.Debug("capturing page")
	state, err := e.Capturer.CapturePage(ctx, rawURL, pagesense.CaptureOptions{
		WaitForIdle: opts.WaitForIdle,
		Timeout:     opts.Timeout,
		Screenshot:  opts.Screenshot,
	})
	if err != nil {
		category := captureCategory(err)
		logger.Warn("page capture failed", "category", category, "error", err)
		return e.failure(rawURL, requestID, start, category, err)
	}

	logger.Debug("analyzing page structure")
	analysis, err := e.Analyzer.Analyze(state)
	if err != nil {
		logger.Warn("DOM analysis failed", "error", err)
		return e.failure(rawURL, requestID, start, CategoryDOMAnalysisError, err)
	}

	logger.Debug("classifying page", "domPageType", analysis.PageType)
	classification := e.Classifier.Classify(ctx, state)
	category := classification.Category
	confidence := classification.Confidence
	if confidence < minModelConfidence && analysis.PageType != pagesense.PageTypeUnknown {
		logger.Debug("low-confidence classification overridden by DOM heuristic",
			"modelCategory", classification.Category,
			"modelConfidence", classification.Confidence,
			"domCategory", analysis.PageType)
		category = analysis.PageType
	}
	if confidence <= 0 {
		confidence = floorConfidence
	}

	metadata := map[string]any{
		"requestId":            requestID,
		"classificationMethod": classification.Method,
		"domPageType":          string(analysis.PageType),
	}
	if state.Title != "" {
		metadata["title"] = state.Title
	}
	if final, ok := state.Metadata["finalURL"]; ok {
		metadata["finalURL"] = final
	}
	if e.Cache != nil {
		if pattern, ok := e.Cache.GetPattern(ctx, rawURL); ok {
			metadata["knownPattern"] = pattern.URLPattern
		}
	}

	logger.Debug("extracting fields", "category", category)
	data := e.Fields.Extract(ctx, state, category, opts.Intent)

	result := &pagesense.ExtractionResult{
		Success:     true,
		URL:         rawURL,
		PageType:    category,
		Confidence:  confidence,
		Data:        data,
		Metadata:    metadata,
		ExtractedAt: time.Now().UTC(),
	}

	if !opts.SkipCache && e.Cache != nil && result.Confidence >= minCacheConfidence {
		e.Cache.CacheExtraction(ctx, rawURL, opts.Intent, result)
		e.Cache.LearnPattern(ctx, rawURL, result)
	}

	result.ProcessingTime = time.Since(start)
	logger.Info("extraction complete",
		"pageType", result.PageType,
		"confidence", result.Confidence,
		"fields", len(result.Data),
		"durationMs", result.ProcessingTime.Milliseconds())
	return result
}

// ExtractFormatted runs Extract and renders the resulting data in the
// requested output format. Only an unsupported format is an error.
func (e *Extractor) ExtractFormatted(ctx context.Context, rawURL string, format pagesense.OutputFormat, opts Options) (string, *pagesense.ExtractionResult, error) {
	if !pagesense.ValidOutputFormat(format) {
		return "", nil, pagesense.Errorf(pagesense.EINVALID, "unsupported output format %q", format)
	}
	result := e.Extract(ctx, rawURL, opts)
	if !result.Success {
		return "", result, nil
	}
	if e.Formatter == nil {
		return "", result, pagesense.Errorf(pagesense.EINVALID, "no formatter configured")
	}
	return e.Formatter.Format(result.Data, result.PageType, format), result, nil
}

// ExtractForIntent answers a natural-language caller. Failures come back as
// an apologetic plain-language message, never as the raw error taxonomy.
func (e *Extractor) ExtractForIntent(ctx context.Context, rawURL, intent string) string {
	result := e.Extract(ctx, rawURL, Options{Intent: intent})
	if !result.Success {
		return "Sorry, I wasn't able to read that page right now. It may be unreachable or blocked. Please check the address or try again in a few minutes."
	}
	if e.Formatter == nil {
		return "The page was read successfully, but no formatter is configured to present it."
	}
	return e.Formatter.Format(result.Data, result.PageType, pagesense.FormatNatural)
}

// SystemHealth aggregates per-component health reports.
type SystemHealth struct {
	Overall    pagesense.HealthStatus      `json:"overall"`
	Components map[string]pagesense.Health `json:"components"`
}

// HealthCheck polls every dependency that can report health. Overall is
// healthy only when every component is healthy, degraded when the worst
// report is degraded, and the worst reported status otherwise.
func (e *Extractor) HealthCheck(ctx context.Context) SystemHealth {
	components := map[string]any{
		"capturer":   e.Capturer,
		"analyzer":   e.Analyzer,
		"classifier": e.Classifier,
		"fields":     e.Fields,
		"cache":      e.Cache,
	}

	health := SystemHealth{
		Overall:    pagesense.HealthHealthy,
		Components: make(map[string]pagesense.Health),
	}
	for name, component := range components {
		checker, ok := component.(pagesense.HealthChecker)
		if !ok {
			continue
		}
		report := checker.HealthCheck(ctx)
		health.Components[name] = report
		if statusRank(report.Status) > statusRank(health.Overall) {
			health.Overall = report.Status
		}
	}
	return health
}

func statusRank(s pagesense.HealthStatus) int {
	switch s {
	case pagesense.HealthHealthy:
		return 0
	case pagesense.HealthDegraded:
		return 1
	case pagesense.HealthUnavailable:
		return 2
	default:
		return 3
	}
}

// failure converts a terminal stage error into a failed result carrying the
// categorized error in its metadata.
func (e *Extractor) failure(rawURL, requestID string, start time.Time, category string, err error) *pagesense.ExtractionResult {
	return &pagesense.ExtractionResult{
		Success:  false,
		URL:      rawURL,
		PageType: pagesense.PageTypeUnknown,
		Errors:   []string{pagesense.ErrorMessage(err)},
		Metadata: map[string]any{
			"requestId":    requestID,
			"errorType":    category,
			"errorMessage": pagesense.ErrorMessage(err),
		},
		ExtractedAt:    time.Now().UTC(),
		ProcessingTime: time.Since(start),
	}
}

// captureCategory maps a capture-stage error code onto a result category.
func captureCategory(err error) string {
	switch pagesense.ErrorCode(err) {
	case pagesense.EBLOCKED:
		return CategoryNavigationBlocked
	case pagesense.ETIMEOUT:
		return CategoryNavigationTimeout
	case pagesense.ENAVIGATION, pagesense.ENORESPONSE:
		return CategoryNavigationError
	case pagesense.EUNAVAILABLE, pagesense.ESNAPSHOT:
		return CategoryBrowserError
	default:
		return CategoryUnknownBrowserError
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
