package mock

import (
	"context"
	"time"

	"github.com/fwojciec/pagesense"
)

var _ pagesense.PatternCache = (*PatternCache)(nil)

// PatternCache is a mock implementation of pagesense.PatternCache.
type PatternCache struct {
	GetCachedExtractionFn func(ctx context.Context, url, intent string) (*pagesense.ExtractionResult, bool)
	CacheExtractionFn     func(ctx context.Context, url, intent string, result *pagesense.ExtractionResult)
	GetPatternFn          func(ctx context.Context, url string) (*pagesense.ExtractionPattern, bool)
	LearnPatternFn        func(ctx context.Context, url string, result *pagesense.ExtractionResult)
}

func (c *PatternCache) GetCachedExtraction(ctx context.Context, url, intent string) (*pagesense.ExtractionResult, bool) {
	if c.GetCachedExtractionFn == nil {
		return nil, false
	}
	return c.GetCachedExtractionFn(ctx, url, intent)
}

func (c *PatternCache) CacheExtraction(ctx context.Context, url, intent string, result *pagesense.ExtractionResult) {
	if c.CacheExtractionFn != nil {
		c.CacheExtractionFn(ctx, url, intent, result)
	}
}

func (c *PatternCache) GetPattern(ctx context.Context, url string) (*pagesense.ExtractionPattern, bool) {
	if c.GetPatternFn == nil {
		return nil, false
	}
	return c.GetPatternFn(ctx, url)
}

func (c *PatternCache) LearnPattern(ctx context.Context, url string, result *pagesense.ExtractionResult) {
	if c.LearnPatternFn != nil {
		c.LearnPatternFn(ctx, url, result)
	}
}

var _ pagesense.KV = (*KV)(nil)

// KV is a mock implementation of pagesense.KV.
type KV struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return kv.GetFn(ctx, key)
}

func (kv *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return kv.SetFn(ctx, key, value, ttl)
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	return kv.DeleteFn(ctx, key)
}
