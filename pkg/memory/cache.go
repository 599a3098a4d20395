package memory

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded TTL cache with oldest-insertion eviction. Entries are
// evicted when the capacity is reached, in the order they were first
// inserted, and lazily on read when their TTL has expired. A ttl of zero
// disables time-based expiry.
//
// The cache is advisory: callers fall through to the record store on a
// miss and repopulate. Losing an entry costs performance, not correctness.
type Cache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*list.Element
	order    *list.List // oldest insertion at front

	now func() time.Time
}

type cacheEntry[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

// NewCache creates a cache bounded to capacity entries with the given ttl.
func NewCache[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key, or false on a miss or expiry.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[V])
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return zero, false
	}

	return entry.value, true
}

// Set stores value under key, evicting the oldest insertion if full.
// Overwriting an existing key refreshes its TTL but keeps its insertion
// position.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry[V])
		entry.value = value
		entry.storedAt = c.now()
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry[V]).key)
		}
	}

	c.entries[key] = c.order.PushBack(&cacheEntry[V]{
		key:      key,
		value:    value,
		storedAt: c.now(),
	})
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// Len returns the number of cached entries, including not yet reaped
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// DupeFilter tracks the most recent content fingerprints per identity so
// that re-recording the same turn or fact twice within a short window is
// rejected without a store read.
type DupeFilter struct {
	mu       sync.Mutex
	window   int
	maxUsers int
	users    map[string][]string // newest fingerprint last
	order    []string            // user insertion order for eviction
}

// NewDupeFilter creates a filter keeping window fingerprints per identity.
func NewDupeFilter(window int) *DupeFilter {
	if window <= 0 {
		window = 1
	}
	return &DupeFilter{
		window:   window,
		maxUsers: 10000,
		users:    make(map[string][]string),
	}
}

// Seen reports whether fingerprint was recorded for userID within the
// window, recording it if it was not.
func (f *DupeFilter) Seen(userID, fingerprint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	recent, ok := f.users[userID]
	if !ok {
		if len(f.order) >= f.maxUsers {
			delete(f.users, f.order[0])
			f.order = f.order[1:]
		}
		f.order = append(f.order, userID)
	}

	for _, fp := range recent {
		if fp == fingerprint {
			return true
		}
	}

	recent = append(recent, fingerprint)
	if len(recent) > f.window {
		recent = recent[len(recent)-f.window:]
	}
	f.users[userID] = recent
	return false
}

// Forget drops all tracked fingerprints for userID.
func (f *DupeFilter) Forget(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userID]; !ok {
		return
	}
	delete(f.users, userID)
	for i, u := range f.order {
		if u == userID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}
