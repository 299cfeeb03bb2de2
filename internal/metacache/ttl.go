// Package metacache holds time-bounded caches of display metadata fetched
// from the chat platform. Entries expire by age only.
package metacache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched value stays fresh.
const DefaultTTL = 30 * time.Minute

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTL is a keyed cache whose entries are fresh for a fixed duration after
// they were fetched. Concurrent misses on one key share a single fetch.
// Failed fetches are not cached.
type TTL[V any] struct {
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]entry[V]
}

// NewTTL creates a cache. A nil now uses time.Now.
func NewTTL[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{ttl: ttl, now: now, entries: make(map[string]entry[V])}
}

// Get returns the cached value for key if it is fresh, otherwise calls
// fetch and caches its result.
func (c *TTL[V]) Get(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = entry[V]{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	v, _ := res.(V)
	return v, err
}

// Len returns the number of entries, fresh or stale.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}
