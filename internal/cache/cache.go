// Package cache holds engine responses that rarely change, such as the
// ticker catalog and screener matches.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
	seq     uint64
}

// Cache is a TTL cache holding at most maxEntries values. When full, expired
// entries go first, then the earliest insertion. Safe for concurrent use.
type Cache[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	ttl   time.Duration
	limit int
	seq   uint64
	now   func() time.Time
}

func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		items: make(map[string]entry[V]),
		ttl:   ttl,
		limit: max(maxEntries, 1),
		now:   time.Now,
	}
}

// MakeKey joins key parts with ':'.
func MakeKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get returns the value for key. Expired entries are dropped on read.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok && c.now().After(e.expires) {
		delete(c.items, key)
		ok = false
	}
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, refreshing its TTL. Replacing an existing key
// never evicts.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, replacing := c.items[key]
	if !replacing && len(c.items) >= c.limit {
		c.makeRoom()
	}
	c.seq++
	c.items[key] = entry[V]{value: value, expires: c.now().Add(c.ttl), seq: c.seq}
}

// InvalidatePrefix removes all entries whose key starts with prefix.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// makeRoom frees at least one slot. c.mu must be held.
func (c *Cache[V]) makeRoom() {
	now := c.now()
	var oldest string
	var oldestSeq uint64
	for key, e := range c.items {
		if now.After(e.expires) {
			delete(c.items, key)
			continue
		}
		if oldestSeq == 0 || e.seq < oldestSeq {
			oldest, oldestSeq = key, e.seq
		}
	}
	if len(c.items) >= c.limit && oldestSeq != 0 {
		delete(c.items, oldest)
	}
}
