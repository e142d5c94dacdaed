package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/launchtree/pkg/domain"
)

// Cache implements ports.ResultCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]*domain.CacheEntry
	mu   sync.RWMutex
}

// NewCache creates a new in-memory result cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*domain.CacheEntry),
	}
}

// Put stores a copy of the entry.
func (c *Cache) Put(ctx context.Context, key string, entry *domain.CacheEntry) error {
	copied := copyEntry(entry)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = copied
	return nil
}

// Get returns a copy of the stored entry so callers cannot mutate the cache.
func (c *Cache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return copyEntry(entry), nil
}

// Delete removes the entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func copyEntry(e *domain.CacheEntry) *domain.CacheEntry {
	out := *e
	out.Document = slices.Clone(e.Document)
	out.Sources = slices.Clone(e.Sources)
	out.Diagnostics = slices.Clone(e.Diagnostics)
	return &out
}
