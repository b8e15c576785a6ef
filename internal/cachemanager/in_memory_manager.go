package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ilegend/legendnb/internal/log"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// NewInMemoryCacheManager returns a go-cache backed manager. useCase only
// labels log lines.
func NewInMemoryCacheManager[V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[V] {
	if defaultExpiration <= 0 {
		defaultExpiration = DefaultExpiration
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &InMemoryCacheManager[V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager implements CacheManager with string keys.
type InMemoryCacheManager[V any] struct {
	useCase string
	cache   *gocache.Cache
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[int])(nil)

// Get returns the live entry for key.
func (c *InMemoryCacheManager[V]) Get(ctx context.Context, key string) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(key)
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}
	return v, true
}

// GetWithRefresh is Get that pushes the expiry of a hit out to ttl.
func (c *InMemoryCacheManager[V]) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (V, bool) {
	value, found := c.Get(ctx, key)
	if !found {
		return value, false
	}
	c.Set(ctx, key, value, ttl)
	return value, true
}

// Set stores value under key for ttl; gocache.DefaultExpiration uses the
// manager default.
func (c *InMemoryCacheManager[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

// Delete removes keys.
func (c *InMemoryCacheManager[V]) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		c.cache.Delete(key)
	}
	return nil
}

// Flush drops every entry.
func (c *InMemoryCacheManager[V]) Flush(ctx context.Context) error {
	n := c.cache.ItemCount()
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "cache", c.useCase, "entries", n)
	return nil
}

// Len returns the number of entries, expired ones included until cleanup.
func (c *InMemoryCacheManager[V]) Len() int {
	return c.cache.ItemCount()
}
