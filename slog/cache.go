package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesense"
)

// Ensure LoggingPatternCache implements pagesense.PatternCache.
var _ pagesense.PatternCache = (*LoggingPatternCache)(nil)

// LoggingPatternCache wraps a PatternCache with hit/miss logging.
type LoggingPatternCache struct {
	next   pagesense.PatternCache
	logger *slog.Logger
}

// NewLoggingPatternCache creates a new LoggingPatternCache.
func NewLoggingPatternCache(next pagesense.PatternCache, logger *slog.Logger) *LoggingPatternCache {
	return &LoggingPatternCache{next: next, logger: logger}
}

// GetCachedExtraction delegates and logs the lookup.
func (c *LoggingPatternCache) GetCachedExtraction(ctx context.Context, url, intent string) (result *pagesense.ExtractionResult, hit bool) {
	defer func(begin time.Time) {
		c.logger.Debug("extraction cache lookup",
			"url", url,
			"hit", hit,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.GetCachedExtraction(ctx, url, intent)
}

// CacheExtraction delegates and logs the write.
func (c *LoggingPatternCache) CacheExtraction(ctx context.Context, url, intent string, result *pagesense.ExtractionResult) {
	defer func(begin time.Time) {
		c.logger.Debug("extraction cache write",
			"url", url,
			"duration", time.Since(begin),
		)
	}(time.Now())
	c.next.CacheExtraction(ctx, url, intent, result)
}

// GetPattern delegates and logs the lookup.
func (c *LoggingPatternCache) GetPattern(ctx context.Context, url string) (pattern *pagesense.ExtractionPattern, hit bool) {
	defer func(begin time.Time) {
		c.logger.Debug("pattern lookup",
			"url", url,
			"hit", hit,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.GetPattern(ctx, url)
}

// LearnPattern delegates and logs the update.
func (c *LoggingPatternCache) LearnPattern(ctx context.Context, url string, result *pagesense.ExtractionResult) {
	defer func(begin time.Time) {
		c.logger.Debug("pattern learn",
			"url", url,
			"confidence", result.Confidence,
			"duration", time.Since(begin),
		)
	}(time.Now())
	c.next.LearnPattern(ctx, url, result)
}

// HealthCheck forwards to the wrapped cache so decoration does not hide its
// health surface.
func (c *LoggingPatternCache) HealthCheck(ctx context.Context) pagesense.Health {
	if hc, ok := c.next.(pagesense.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}
