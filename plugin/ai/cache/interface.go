// Package cache provides a TTL-bounded LRU store used to memoize interpreter results.
package cache

import "time"

// Store defines the cache contract.
type Store[V any] interface {
	// Get retrieves a value from cache.
	// Returns: value, whether it exists and has not expired
	Get(key string) (V, bool)

	// Set stores a value in cache.
	// ttl: expiration time, the store default when <= 0
	Set(key string, value V, ttl time.Duration)

	// Invalidate removes entries matching pattern.
	// pattern: exact key or prefix wildcard (fr:*)
	Invalidate(pattern string) int

	// Clear removes all entries.
	Clear()
}
