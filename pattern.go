package pagesense

import (
	"context"
	"time"
)

// Default cache policy values.
const (
	DefaultResultTTL            = 5 * time.Minute
	DefaultPatternTTL           = 7 * 24 * time.Hour
	DefaultMinPatternConfidence = 0.8

	// DefaultMaxSegmentLength is the path-segment length beyond which a
	// segment is treated as an opaque ID and wildcarded in URL patterns.
	// Deliberately configurable: it can misclassify legitimate slugs.
	DefaultMaxSegmentLength = 20
)

// ExtractionPattern is a learned URL→schema mapping keyed by a wildcarded
// domain+path template. It is the only entity with cross-request shared
// mutable state; updates are read-modify-write.
type ExtractionPattern struct {
	URLPattern     string            `json:"urlPattern"`
	PageType       PageType          `json:"pageType"`
	FieldSelectors map[string]string `json:"fieldSelectors,omitempty"`
	Confidence     float64           `json:"confidence"`
	SuccessRate    float64           `json:"successRate"`
	UsageCount     int               `json:"usageCount"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastUsedAt     time.Time         `json:"lastUsedAt"`
}

// PatternCache short-circuits repeat work and learns reusable extraction
// patterns. Cache unavailability must never fail the caller: every
// operation degrades to a miss or no-op with a logged warning.
type PatternCache interface {
	// GetCachedExtraction returns a previously cached result for
	// (url, intent), or (nil, false) on miss.
	GetCachedExtraction(ctx context.Context, url, intent string) (*ExtractionResult, bool)

	// CacheExtraction stores a result keyed by (url, intent) with the
	// request-level TTL.
	CacheExtraction(ctx context.Context, url, intent string, result *ExtractionResult)

	// GetPattern returns the learned pattern matching url, or (nil, false).
	GetPattern(ctx context.Context, url string) (*ExtractionPattern, bool)

	// LearnPattern creates or updates the pattern for url from a completed
	// result. Writes are gated on result confidence; on update, confidence
	// becomes the running average of old and new.
	LearnPattern(ctx context.Context, url string, result *ExtractionResult)
}

// KV is the remote key-value store consumed by the pattern cache. It may be
// unavailable; callers degrade to an in-process fallback.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
