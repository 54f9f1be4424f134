package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryCache is the single-process [Cache] used when no Redis is configured.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	generations map[int64]int64
	now         func() time.Time
}

func NewMemoryCache() Cache {
	return newMemoryCache(time.Now)
}

func newMemoryCache(now func() time.Time) *memoryCache {
	return &memoryCache{
		entries:     make(map[string]memoryEntry),
		generations: make(map[int64]int64),
		now:         now,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

func (c *memoryCache) Generation(_ context.Context, groupID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generations[groupID], nil
}

// Invalidate bumps the generation and drops every entry of the group; the
// bump alone would be enough, the purge keeps memory bounded.
func (c *memoryCache) Invalidate(_ context.Context, groupID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[groupID]++

	prefix := groupPrefix(groupID)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}

	return nil
}
