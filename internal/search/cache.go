// Package search dispatches debounced catalog queries through a TTL cache
// and cancels superseded requests.
package search

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	data      V
	timestamp time.Time
}

// Cache is a bounded TTL cache. Eviction is by insertion order: reads use
// Peek so a hit never refreshes an entry's position.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries *lru.Cache[string, entry[V]]
}

// NewCache creates a cache holding at most size entries for ttl each.
func NewCache[V any](size int, ttl time.Duration) (*Cache[V], error) {
	entries, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: entries,
	}, nil
}

// Get returns the live value for key. Expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries.Peek(key)
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.timestamp) > c.ttl {
		c.entries.Remove(key)
		return zero, false
	}
	return e.data, true
}

// Set stores value under key, evicting the oldest entry when full. A live
// entry already under key is kept as is, so two concurrent misses for the
// same key cannot move it to the newest position. An expired one is
// replaced and counts as a new insertion.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if e, ok := c.entries.Peek(key); ok {
		if now.Sub(e.timestamp) <= c.ttl {
			return
		}
		c.entries.Remove(key)
	}
	c.entries.Add(key, entry[V]{data: value, timestamp: now})
}

// Len returns the number of stored entries, including expired ones not yet
// read.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}
