package datum

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes decode results by content hash for the lifetime of one analysis run.
// It is safe for concurrent use; concurrent requests for the same hash decode once.
type Cache struct {
	opts  []Option
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	value Value
	err   error
}

// NewCache creates an empty cache; opts are passed to every Decode call.
func NewCache(opts ...Option) *Cache {
	return &Cache{
		opts:    opts,
		entries: make(map[string]cacheEntry),
	}
}

// Decode returns the cached result for hash, decoding raw on first use.
// An empty hash is replaced by the content hash of raw. Failures are cached too.
func (c *Cache) Decode(hash string, raw []byte) (Value, error) {
	if hash == "" {
		hash = Hash(raw)
	}

	c.mu.RLock()
	entry, ok := c.entries[hash]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.value, entry.err
	}

	res, _, _ := c.group.Do(hash, func() (any, error) {
		c.mu.RLock()
		entry, ok := c.entries[hash]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		v, err := Decode(raw, c.opts...)
		entry = cacheEntry{value: v, err: err}

		c.mu.Lock()
		c.entries[hash] = entry
		c.misses++
		c.mu.Unlock()
		return entry, nil
	})
	entry = res.(cacheEntry)
	return entry.value, entry.err
}

// Len returns the number of distinct payloads decoded so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
