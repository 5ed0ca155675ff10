package utils

import (
	"sync"
	"time"
)

type ttlEntry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a small concurrency-safe map with per-entry expiry. It exists
// so short-lived lookups (the badge catalog, resolved user ids) are held in
// an explicit, injectable object with invalidation instead of package-level
// memoization that goes stale across requests.
type TTLCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]ttlEntry
}

// NewTTLCache creates a cache whose entries expire after ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TTLCache{ttl: ttl, entries: map[string]ttlEntry{}}
}

// Get returns the cached value when present and unexpired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = ttlEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops a single key.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
