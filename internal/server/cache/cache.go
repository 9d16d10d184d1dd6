// Package cache provides the in-memory TTL cache used for upstream reads.
// It uses patrickmn/go-cache for expiry and janitor cleanup.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps go-cache with a load-through helper.
type Cache struct {
	store *gocache.Cache
	ttl   time.Duration

	mu      sync.Mutex
	loading map[string]*call
}

// call is an in-flight load shared by concurrent callers of one key.
type call struct {
	done  chan struct{}
	value any
	err   error
}

// New creates a new cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store:   gocache.New(defaultTTL, cleanupInterval),
		ttl:     defaultTTL,
		loading: make(map[string]*call),
	}
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value in the cache with default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Delete removes a value from the cache.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// TTL returns the default expiration.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Fetch returns the cached value for key, or calls load once for all
// concurrent callers and caches a successful result. cached reports
// whether the value came from the cache. Errors are not cached.
func (c *Cache) Fetch(key string, load func() (any, error)) (value any, cached bool, err error) {
	if v, ok := c.store.Get(key); ok {
		return v, true, nil
	}

	c.mu.Lock()
	if inflight, ok := c.loading[key]; ok {
		c.mu.Unlock()
		<-inflight.done
		return inflight.value, false, inflight.err
	}
	cl := &call{done: make(chan struct{})}
	c.loading[key] = cl
	c.mu.Unlock()

	cl.value, cl.err = load()
	if cl.err == nil {
		c.Set(key, cl.value)
	}

	c.mu.Lock()
	delete(c.loading, key)
	c.mu.Unlock()
	close(cl.done)

	return cl.value, false, cl.err
}
