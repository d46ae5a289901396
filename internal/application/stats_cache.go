package application

import (
	"sync"
	"time"
)

// resultCache keeps recently computed results until they expire or the
// underlying collections change.
type resultCache[V any] struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	generation uint64
	entries    map[string]resultCacheEntry[V]
}

type resultCacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func newResultCache[V any](ttl time.Duration, maxEntries int, now func() time.Time) *resultCache[V] {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 16
	}
	if now == nil {
		now = time.Now
	}
	return &resultCache[V]{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]resultCacheEntry[V]),
	}
}

func (c *resultCache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}
	return entry.value, true
}

func (c *resultCache[V]) Store(key string, value V) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(key, value, expiry)
}

func (c *resultCache[V]) storeLocked(key string, value V, expiry time.Time) {
	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = resultCacheEntry[V]{value: value, expiresAt: expiry}
}

// Generation identifies the current contents. Every Invalidate moves it on.
func (c *resultCache[V]) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// StoreIfCurrent keeps value only when no Invalidate happened since
// generation was read. It reports whether the value was kept.
func (c *resultCache[V]) StoreIfCurrent(key string, value V, generation uint64) bool {
	if c == nil {
		return false
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return false
	}
	c.storeLocked(key, value, expiry)
	return true
}

func (c *resultCache[V]) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.entries = make(map[string]resultCacheEntry[V])
	c.mu.Unlock()
}

func (c *resultCache[V]) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *resultCache[V]) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
