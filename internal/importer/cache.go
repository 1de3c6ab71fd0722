package importer

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is the read-through lookup cache injected into the resolver. It is
// a pure optimization: entries may be stale up to their TTL and the cache
// is never treated as a source of truth.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Add(key string, value V)
}

type lruCache[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewLRUCache returns a bounded cache whose entries expire after ttl.
func NewLRUCache[V any](size int, ttl time.Duration) Cache[V] {
	return &lruCache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *lruCache[V]) Get(key string) (V, bool) { return c.lru.Get(key) }

func (c *lruCache[V]) Add(key string, value V) { c.lru.Add(key, value) }

// NopCache caches nothing. Tests use it for determinism.
type NopCache[V any] struct{}

// Get always misses.
func (NopCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

// Add discards the entry.
func (NopCache[V]) Add(string, V) {}
