package cache

import (
	"context"
	"freight-service/internal/ports"
	"sync"
)

// MemoryCoordinateCache is a process-local CoordinateCache.
// Entries are only replaced, never evicted; the reader decides freshness.
type MemoryCoordinateCache struct {
	mu      sync.RWMutex
	entries map[string]ports.CachedCoordinates
}

var _ ports.CoordinateCache = (*MemoryCoordinateCache)(nil)

func NewMemoryCoordinateCache() *MemoryCoordinateCache {
	return &MemoryCoordinateCache{entries: make(map[string]ports.CachedCoordinates)}
}

func (c *MemoryCoordinateCache) Get(_ context.Context, key string) (ports.CachedCoordinates, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *MemoryCoordinateCache) Put(_ context.Context, key string, entry ports.CachedCoordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	return nil
}

// Clear drops every entry.
func (c *MemoryCoordinateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]ports.CachedCoordinates)
}

// Len returns the number of entries, including stale ones.
func (c *MemoryCoordinateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
