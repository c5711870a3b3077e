// Package cache implements the two-tier extraction cache with URL pattern
// learning. Entries live in a remote key-value store when one is configured,
// with an in-process TTL map as the fallback tier. Cache failures never
// propagate to callers: every operation degrades to a miss or a no-op with a
// logged warning.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagesense"
)

const (
	resultKeyPrefix  = "extraction:result:"
	patternKeyPrefix = "extraction:pattern:"

	// shardCount fixes the number of per-key mutex shards used to
	// serialize pattern read-modify-write updates. Must be a power of two.
	shardCount = 64

	defaultOpTimeout = 2 * time.Second
)

var _ pagesense.PatternCache = (*Cache)(nil)

// Cache caches extraction results keyed by (url, intent) and learned
// extraction patterns keyed by a wildcarded domain+path template.
type Cache struct {
	remote               pagesense.KV
	logger               *slog.Logger
	resultTTL            time.Duration
	patternTTL           time.Duration
	minPatternConfidence float64
	maxSegmentLength     int
	opTimeout            time.Duration

	shards [shardCount]sync.Mutex

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithRemote sets the remote key-value tier. Without one the cache operates
// purely in-process.
func WithRemote(kv pagesense.KV) Option {
	return func(c *Cache) { c.remote = kv }
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithResultTTL overrides the TTL for cached extraction results.
func WithResultTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.resultTTL = ttl }
}

// WithPatternTTL overrides the TTL for learned patterns.
func WithPatternTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.patternTTL = ttl }
}

// WithMinPatternConfidence overrides the confidence gate below which results
// do not create or update patterns.
func WithMinPatternConfidence(min float64) Option {
	return func(c *Cache) { c.minPatternConfidence = min }
}

// WithMaxSegmentLength overrides the path-segment length beyond which a
// segment is wildcarded when deriving a pattern key.
func WithMaxSegmentLength(n int) Option {
	return func(c *Cache) { c.maxSegmentLength = n }
}

// WithOpTimeout bounds each remote store round-trip.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Cache) { c.opTimeout = d }
}

// New creates a Cache with the default TTLs and thresholds.
func New(opts ...Option) *Cache {
	c := &Cache{
		logger:               slog.Default(),
		resultTTL:            pagesense.DefaultResultTTL,
		patternTTL:           pagesense.DefaultPatternTTL,
		minPatternConfidence: pagesense.DefaultMinPatternConfidence,
		maxSegmentLength:     pagesense.DefaultMaxSegmentLength,
		opTimeout:            defaultOpTimeout,
		local:                make(map[string]localEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCachedExtraction returns a previously cached result for (url, intent).
// Hits carry FromCache=true.
func (c *Cache) GetCachedExtraction(ctx context.Context, rawURL, intent string) (*pagesense.ExtractionResult, bool) {
	key := c.resultKey(rawURL, intent)
	data, ok := c.get(ctx, key)
	if !ok {
		return nil, false
	}
	var result pagesense.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("discarding undecodable cached result", "key", key, "error", err)
		return nil, false
	}
	result.FromCache = true
	return &result, true
}

// CacheExtraction stores a result keyed by (url, intent) with the
// request-level TTL.
func (c *Cache) CacheExtraction(ctx context.Context, rawURL, intent string, result *pagesense.ExtractionResult) {
	if result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("skipping cache write for unencodable result", "url", rawURL, "error", err)
		return
	}
	c.set(ctx, c.resultKey(rawURL, intent), data, c.resultTTL)
}

// GetPattern returns the learned pattern whose wildcarded template matches
// url, or (nil, false) when none has been learned yet.
func (c *Cache) GetPattern(ctx context.Context, rawURL string) (*pagesense.ExtractionPattern, bool) {
	key, ok := c.patternKey(rawURL)
	if !ok {
		return nil, false
	}
	return c.getPattern(ctx, key)
}

// LearnPattern creates or updates the pattern matching url from a completed
// result. Results below the confidence gate are ignored. Updates compute the
// running average of old and new confidence and refresh usage accounting.
func (c *Cache) LearnPattern(ctx context.Context, rawURL string, result *pagesense.ExtractionResult) {
	if result == nil || result.Confidence < c.minPatternConfidence {
		return
	}
	key, ok := c.patternKey(rawURL)
	if !ok {
		return
	}

	// The read-modify-write below must not interleave for the same key.
	// Unrelated keys proceed in parallel on other shards.
	shard := &c.shards[xxhash.Sum64String(key)&(shardCount-1)]
	shard.Lock()
	defer shard.Unlock()

	now := time.Now()
	pattern, found := c.getPattern(ctx, key)
	if found {
		pattern.Confidence = (pattern.Confidence + result.Confidence) / 2
		pattern.SuccessRate = runningAverage(pattern.SuccessRate, pattern.UsageCount, successValue(result))
		pattern.UsageCount++
		pattern.LastUsedAt = now
	} else {
		pattern = &pagesense.ExtractionPattern{
			URLPattern:  patternTemplate(rawURL, c.maxSegmentLength),
			PageType:    result.PageType,
			Confidence:  result.Confidence,
			SuccessRate: successValue(result),
			UsageCount:  1,
			CreatedAt:   now,
			LastUsedAt:  now,
		}
	}

	data, err := json.Marshal(pattern)
	if err != nil {
		c.logger.Warn("skipping pattern write for unencodable pattern", "key", key, "error", err)
		return
	}
	c.set(ctx, key, data, c.patternTTL)
}

// HealthCheck probes the remote tier. A cache running on the in-process
// tier alone still works, so remote trouble reports degraded, never worse.
func (c *Cache) HealthCheck(ctx context.Context) pagesense.Health {
	if c.remote == nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "no remote store configured, in-process tier only"}
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if _, _, err := c.remote.Get(opCtx, resultKeyPrefix+"health-probe"); err != nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "remote store unreachable: " + err.Error()}
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}

func (c *Cache) getPattern(ctx context.Context, key string) (*pagesense.ExtractionPattern, bool) {
	data, ok := c.get(ctx, key)
	if !ok {
		return nil, false
	}
	var pattern pagesense.ExtractionPattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		c.logger.Warn("discarding undecodable cached pattern", "key", key, "error", err)
		return nil, false
	}
	return &pattern, true
}

// get reads from the remote tier first and falls back to the local TTL map
// when the remote store is absent or failing.
func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	if c.remote != nil {
		opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		data, ok, err := c.remote.Get(opCtx, key)
		cancel()
		if err == nil {
			if ok {
				return data, true
			}
		} else {
			c.logger.Warn("remote cache read failed, falling back to local tier", "key", key, "error", err)
		}
	}
	return c.localGet(key)
}

// set writes to the remote tier when available and mirrors into the local
// tier, which also serves as the sole store when the remote write fails.
func (c *Cache) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.remote != nil {
		opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		err := c.remote.Set(opCtx, key, value, ttl)
		cancel()
		if err != nil {
			c.logger.Warn("remote cache write failed, keeping local copy only", "key", key, "error", err)
		}
	}
	c.localSet(key, value, ttl)
}

func (c *Cache) localGet(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.local[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.local, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) localSet(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = localEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *Cache) resultKey(rawURL, intent string) string {
	return resultKeyPrefix + hashKey(rawURL+"\x00"+intent)
}

func (c *Cache) patternKey(rawURL string) (string, bool) {
	template := patternTemplate(rawURL, c.maxSegmentLength)
	if template == "" {
		return "", false
	}
	return patternKeyPrefix + hashKey(template), true
}

// patternTemplate derives the wildcarded domain+path template a URL belongs
// to. Purely numeric segments and segments longer than maxSegmentLength are
// treated as opaque IDs and replaced with "*".
func patternTemplate(rawURL string, maxSegmentLength int) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if isOpaqueSegment(segment, maxSegmentLength) {
			segments[i] = "*"
		}
	}
	return u.Host + strings.Join(segments, "/")
}

func isOpaqueSegment(segment string, maxLength int) bool {
	if len(segment) > maxLength {
		return true
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hashKey(s string) string {
	const hexDigits = "0123456789abcdef"
	sum := xxhash.Sum64String(s)
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[sum&0xf]
		sum >>= 4
	}
	return string(buf[:])
}

func runningAverage(current float64, count int, next float64) float64 {
	if count <= 0 {
		return next
	}
	return (current*float64(count) + next) / float64(count+1)
}

func successValue(result *pagesense.ExtractionResult) float64 {
	if result.Success {
		return 1
	}
	return 0
}
