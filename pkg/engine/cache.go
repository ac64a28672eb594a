package engine

import (
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Cache is a process-wide keyed store of recent responses with
// prefix-pattern invalidation. Invalidation is synchronous: once
// Invalidate returns, no Get can observe a removed entry, so dependent
// refetches issued afterwards always miss.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, key)

		return nil, false
	}

	return entry.value, true
}

// Set stores value under key. A ttl of zero or less means no expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.entries[key] = entry
}

// Invalidate removes every entry matching pattern and returns how many
// were removed. A pattern ending in "*" matches every key starting with
// the fixed prefix before it; any other pattern matches exactly one key.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if _, ok := c.entries[pattern]; !ok {
			return 0
		}

		delete(c.entries, pattern)

		return 1
	}

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Len reports the number of live entries, counting expired ones not yet
// evicted by a Get.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
