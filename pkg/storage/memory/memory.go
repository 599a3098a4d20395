// Package memory provides an in-memory implementation of the KVStore
// interface, used by tests and single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore implements storage.KVStore using a mutex-guarded map.
// Expired keys are reaped lazily on access.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return "", &storage.NotFoundError{Key: key}
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another writer may have replaced it.
		if cur, ok := m.items[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return "", &storage.NotFoundError{Key: key}
	}
	return e.value, nil
}

// Put stores value under key with an optional ttl.
func (m *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = entry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete removes key. Missing keys are ignored.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live (non-expired) keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.items {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Keys returns all live keys, in no particular order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	keys := make([]string, 0, len(m.items))
	for k, e := range m.items {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
