package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultLRUSize is the entry limit used when NewLRUCache is given size <= 0.
const DefaultLRUSize = 10_000

// LRUCache is a bounded in-memory cache. Once size entries are stored the
// least recently used one is evicted; entries also expire after the
// cache-wide ttl (zero disables expiry). The per-entry ttl passed to Set is
// ignored.
type LRUCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRUCache creates a bounded cache holding at most size entries.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = DefaultLRUSize
	}
	return &LRUCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get retrieves a value from the cache.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.lru.Get(key)
	return data, ok, nil
}

// Set stores a copy of data under key, evicting the oldest entry if full.
func (c *LRUCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.lru.Add(key, append([]byte(nil), data...))
	return nil
}

// Delete removes a value from the cache.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (c *LRUCache) Len() int { return c.lru.Len() }

// Close purges all entries.
func (c *LRUCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*LRUCache)(nil)
