package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ServiceConfig configures the cache service.
type ServiceConfig struct {
	Capacity        int           // Maximum number of entries (default: 1000)
	DefaultTTL      time.Duration // TTL for entries (default: 5 minutes)
	CleanupInterval time.Duration // Interval for expired entry cleanup (default: 1 minute)
}

// DefaultServiceConfig returns default cache service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Capacity:        DefaultCapacity,
		DefaultTTL:      DefaultTTL,
		CleanupInterval: time.Minute,
	}
}

// Service is an LRU store with a background sweep of expired entries,
// for long-running processes where keys are rarely read twice.
type Service[V any] struct {
	lru *LRUCache[V]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupInterval time.Duration
}

// NewService creates a new cache service and starts its sweeper.
func NewService[V any](cfg ServiceConfig) *Service[V] {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service[V]{
		lru:             NewLRUCache[V](cfg.Capacity, cfg.DefaultTTL),
		ctx:             ctx,
		cancel:          cancel,
		cleanupInterval: cfg.CleanupInterval,
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Close stops the sweeper.
func (s *Service[V]) Close() {
	s.cancel()
	s.wg.Wait()
}

// Get retrieves a value from cache.
func (s *Service[V]) Get(key string) (V, bool) {
	return s.lru.Get(key)
}

// Set stores a value in cache.
func (s *Service[V]) Set(key string, value V, ttl time.Duration) {
	s.lru.Set(key, value, ttl)
}

// Invalidate invalidates cache entries matching the pattern.
func (s *Service[V]) Invalidate(pattern string) int {
	return s.lru.Invalidate(pattern)
}

// Size returns the number of entries in the cache.
func (s *Service[V]) Size() int {
	return s.lru.Size()
}

// Clear removes all entries from the cache.
func (s *Service[V]) Clear() {
	s.lru.Clear()
}

// cleanupLoop periodically removes expired entries.
func (s *Service[V]) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.lru.CleanupExpired(); n > 0 {
				slog.Debug("cache sweep removed expired entries", slog.Int("count", n))
			}
		}
	}
}

// Ensure Service implements Store
var _ Store[string] = (*Service[string])(nil)
