package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesense"
)

// Ensure LoggingClassifier implements pagesense.Classifier.
var _ pagesense.Classifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a Classifier with per-classification logging.
type LoggingClassifier struct {
	next   pagesense.Classifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next pagesense.Classifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Classify delegates to the wrapped classifier and logs the outcome.
func (c *LoggingClassifier) Classify(ctx context.Context, state *pagesense.PageState) (result *pagesense.Classification) {
	defer func(begin time.Time) {
		c.logger.Info("page classification",
			"url", state.URL,
			"category", result.Category,
			"confidence", result.Confidence,
			"method", result.Method,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Classify(ctx, state)
}

// HealthCheck forwards to the wrapped classifier so decoration does not
// hide its health surface.
func (c *LoggingClassifier) HealthCheck(ctx context.Context) pagesense.Health {
	if hc, ok := c.next.(pagesense.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}
