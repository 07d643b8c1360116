// Package memory provides the in-process TTL cache backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// entry is one cached value with its expiry deadline.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a bounded in-memory cache with per-entry TTL. At capacity the
// entry closest to expiry is evicted. Expired entries are dropped lazily
// on lookup and during eviction scans.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// New creates a cache holding at most capacity entries, each valid for
// ttl after its write.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache{
		entries:  make(map[string]entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get implements driven.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: the entry may have been
		// overwritten with a fresh expiry in between.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put implements driven.Cache.
func (c *Cache) Put(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Close implements driven.Cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries, expired ones included until
// their lazy removal.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked frees one slot: expired entries first, otherwise the entry
// closest to expiry. Caller holds the write lock.
func (c *Cache) evictLocked() {
	now := c.now()
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			return
		}
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = key, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
