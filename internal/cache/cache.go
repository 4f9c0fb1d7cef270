// ABOUTME: Typed in-memory store whose entries expire after a fixed lifetime
// ABOUTME: Backs the stub backend's bearer tokens; a sweeper runs until Close

package cache

import (
	"log/slog"
	"sync"
	"time"
)

// sweepInterval is how often expired entries are purged in the background
const sweepInterval = time.Minute

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps string keys to values of type V. It is safe for concurrent use.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]item[V]

	stop      chan struct{}
	closeOnce sync.Once
}

// Option configures a Cache
type Option[V any] func(*Cache[V])

// WithClock replaces time.Now, for tests
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// New creates a cache whose entries live for ttl
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]item[V]),
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.sweepEvery(sweepInterval)
	return c
}

// Get returns the live value for key
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(it.expiresAt) {
		delete(c.items, key)
		slog.Debug("cache entry expired")
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value under key for the cache's lifetime
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones not yet swept included
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops every expired entry and returns how many were removed
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, it := range c.items {
		if !now.Before(it.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Close stops the background sweeper. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				slog.Debug("cache swept", "removed", n)
			}
		}
	}
}
