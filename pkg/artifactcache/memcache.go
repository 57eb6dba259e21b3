package artifactcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemCache is an in-memory Cache used by tests and by deployments that run
// without Redis configured. It is not shared across processes.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

// NewMemCache constructs an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

// Get returns the cached value for key, or ErrMiss if absent or expired.
func (c *MemCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", ErrMiss
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(c.entries, key)
		return "", ErrMiss
	}
	return e.value, nil
}

// Set stores value under key with the given TTL. A zero TTL means no
// expiry.
func (c *MemCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.entries[key] = memEntry{value: value, expires: expires}
	return nil
}

// Invalidate deletes every entry whose key has the given prefix.
func (c *MemCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

var _ Cache = (*MemCache)(nil)
var _ Cache = (*RedisCache)(nil)
