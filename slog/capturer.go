// Package slog provides logging decorators for the pagesense interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesense"
)

// Ensure LoggingCapturer implements pagesense.Capturer.
var _ pagesense.Capturer = (*LoggingCapturer)(nil)

// LoggingCapturer wraps a Capturer with per-capture logging.
type LoggingCapturer struct {
	next   pagesense.Capturer
	logger *slog.Logger
}

// NewLoggingCapturer creates a new LoggingCapturer.
func NewLoggingCapturer(next pagesense.Capturer, logger *slog.Logger) *LoggingCapturer {
	return &LoggingCapturer{next: next, logger: logger}
}

// CapturePage delegates to the wrapped capturer and logs the operation.
func (c *LoggingCapturer) CapturePage(ctx context.Context, url string, opts pagesense.CaptureOptions) (state *pagesense.PageState, err error) {
	defer func(begin time.Time) {
		snapshotLen := 0
		if state != nil {
			snapshotLen = len(state.Snapshot)
		}
		c.logger.Info("page capture",
			"url", url,
			"snapshotBytes", snapshotLen,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.CapturePage(ctx, url, opts)
}

// HealthCheck forwards to the wrapped capturer so decoration does not hide
// its health surface.
func (c *LoggingCapturer) HealthCheck(ctx context.Context) pagesense.Health {
	if hc, ok := c.next.(pagesense.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}
