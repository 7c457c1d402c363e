package temporal

import (
	"github.com/hrygo/quand/plugin/ai/cache"
)

// CacheKey identifies a parse by locale and raw input.
type CacheKey struct {
	Locale string
	Input  string
}

// String renders the key with the locale first, so that "fr:*" invalidates
// one locale.
func (k CacheKey) String() string {
	return k.Locale + ":" + k.Input
}

// ResultCache memoizes parse results.
type ResultCache interface {
	Get(key CacheKey) (*ParsedTemporalInput, bool)
	Put(key CacheKey, result *ParsedTemporalInput)
	Clear()
}

type resultCache struct {
	store cache.Store[*ParsedTemporalInput]
}

// NewResultCache wraps a store. Results are copied on the way in and out,
// so callers can never alter a cached value.
func NewResultCache(store cache.Store[*ParsedTemporalInput]) ResultCache {
	return &resultCache{store: store}
}

// NewDefaultResultCache returns a cache with the default capacity and a
// five-minute TTL.
func NewDefaultResultCache() ResultCache {
	return NewResultCache(cache.NewLRUCache[*ParsedTemporalInput](cache.DefaultCapacity, cache.DefaultTTL))
}

func (c *resultCache) Get(key CacheKey) (*ParsedTemporalInput, bool) {
	v, ok := c.store.Get(key.String())
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

func (c *resultCache) Put(key CacheKey, result *ParsedTemporalInput) {
	c.store.Set(key.String(), result.Clone(), 0)
}

func (c *resultCache) Clear() {
	c.store.Clear()
}
