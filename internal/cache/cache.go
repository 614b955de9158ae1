package cache

import (
	"sync"
	"time"
)

// Cache is an in-process TTL store. Expired entries are treated as absent and
// removed on the next access; there is no background sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it has not expired yet.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Before(e.expiresAt) {
		return e.value, true
	}

	c.mu.Lock()
	// Another writer may have refreshed the key since the read lock was released.
	if current, ok := c.entries[key]; ok && !c.now().Before(current.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value under key for ttl, replacing any existing entry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
