package offline

import (
	"context"
	"sync"
	"time"
)

type memoryCache struct {
	entries map[string]*Entry
	order   []string
}

func (c *memoryCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu     sync.Mutex
	caches map[string]*memoryCache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{caches: make(map[string]*memoryCache)}
}

func (m *MemoryStore) cache(name string) *memoryCache {
	c, ok := m.caches[name]
	if !ok {
		c = &memoryCache{entries: make(map[string]*Entry)}
		m.caches[name] = c
	}
	return c
}

func (m *MemoryStore) Get(_ context.Context, cache, key string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.cache(cache).entries[key]
	if !ok {
		return nil, ErrMiss
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) Put(_ context.Context, cache, key string, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.cache(cache)
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	cp := *e
	c.entries[key] = &cp
	c.order = append(c.order, key)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, cache, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache(cache).remove(key)
	return nil
}

func (m *MemoryStore) Trim(_ context.Context, cache string, maxEntries int, olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.cache(cache)
	if !olderThan.IsZero() {
		for len(c.order) > 0 && c.entries[c.order[0]].StoredAt.Before(olderThan) {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
	}
	if maxEntries > 0 {
		for len(c.order) > maxEntries {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
	}
	return nil
}

// Len reports how many entries a cache holds
func (m *MemoryStore) Len(cache string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache(cache).order)
}
