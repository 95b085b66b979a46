package membership

import (
	"sync"
	"time"
)

type entry struct {
	member  bool
	expires time.Time
}

// MemoryCache is a Cache local to the process.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false, ErrNotCached
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return false, ErrNotCached
	}
	return e.member, nil
}

func (c *MemoryCache) Set(key string, member bool, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// opportunistically drop anything expired, so the map doesn't
	// grow without bound
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{member: member, expires: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
