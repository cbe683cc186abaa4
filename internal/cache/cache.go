// Package cache provides a typed in-memory cache with expiration.
package cache

import (
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	maxEntries int
}

// WithMaxEntries caps the number of stored entries. When the cache is full,
// expired entries are purged and, if it is still full, new entries are
// dropped. Zero or less means no cap.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

// Cache is a typed wrapper over go-cache. A nil *Cache is a valid,
// always-missing cache.
type Cache[V any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	cache      *gocache.Cache
	logger     *slog.Logger
}

// New creates a cache whose entries expire after ttl. Expired entries are
// purged every ttl. A ttl of zero or less returns nil, which disables
// caching.
func New[V any](name string, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache[V] {
	if ttl <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		name:       name,
		ttl:        ttl,
		maxEntries: o.maxEntries,
		cache:      gocache.New(ttl, ttl),
		logger:     logger,
	}
}

// Get retrieves an item from the cache by its key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		c.logger.Error("wrong type in cache", "cache", c.name, "key", key)
		return zero, false
	}

	c.logger.Debug("cache hit", "cache", c.name)
	return v, true
}

// Set stores value under key with the default TTL. It reports whether the
// value was stored; a full cache drops it.
func (c *Cache[V]) Set(key string, value V) bool {
	if c == nil {
		return false
	}
	if c.maxEntries > 0 && c.cache.ItemCount() >= c.maxEntries {
		if _, exists := c.cache.Get(key); !exists {
			c.cache.DeleteExpired()
			if c.cache.ItemCount() >= c.maxEntries {
				c.logger.Debug("cache full", "cache", c.name, "max_entries", c.maxEntries)
				return false
			}
		}
	}
	c.cache.Set(key, value, gocache.DefaultExpiration)
	return true
}

// Len returns the number of items, including expired ones not yet purged.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// Flush removes all items.
func (c *Cache[V]) Flush() {
	if c == nil {
		return
	}
	c.cache.Flush()
}
