package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a size-bounded in-process Cache with per-entry TTL.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{entries: entries, now: time.Now}, nil
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.data, true
}

func (c *MemoryCache) Set(key string, data []byte, ttl time.Duration) error {
	c.entries.Add(key, memoryEntry{data: data, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *MemoryCache) Clear() error {
	c.entries.Purge()
	return nil
}

func (c *MemoryCache) Close() error {
	return c.Clear()
}
