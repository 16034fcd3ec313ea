// Package cache provides the storage backends behind catalog response caching.
//
// # Overview
//
// Every catalog lookup is keyed by its request signature (category plus the
// sorted query parameters). A [Cache] maps that key to the decoded catalog
// response, so repeating a lookup with the same category and parameters never
// reaches the network again for as long as the entry lives.
//
// # Backends
//
//   - [MemoryCache]: in-process map, unbounded, entries never expire with a zero TTL.
//     This is the default for the resolution engine.
//   - [LRUCache]: in-process, bounded by entry count with a cache-wide TTL.
//     Use it for long-running servers.
//   - [FileCache]: JSON files on disk; survives process restarts (CLI use).
//   - [RedisCache]: shared cache for several server replicas.
//   - [MongoCache]: shared cache with a TTL index.
//   - [NullCache]: disables caching.
//
// All backends are safe for concurrent use.
//
// # Keys
//
// A [Keyer] turns a namespace and request signature into a storage key.
// [ScopedKeyer] prefixes every key, which lets several engines share one
// Redis or Mongo backend without seeing each other's entries.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get returns (nil, false, nil) on a miss. A ttl of zero passed to Set means
// the entry does not expire; backends with a cache-wide expiry (LRUCache)
// ignore the per-entry ttl.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLCatalog is the default lifetime of a catalog response in the
	// in-process cache. Zero: catalog answers are stable within a run.
	TTLCatalog time.Duration = 0

	// TTLCatalogPersistent is the default lifetime of a catalog response in
	// caches that outlive the process (file, Redis, Mongo).
	TTLCatalogPersistent = 24 * time.Hour
)

// Keyer generates storage keys for cached values.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response.
	// namespace identifies the remote service (e.g. "jlcsearch:") and key is
	// the request signature within it.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
