// Package artifactcache stores content-addressed pipeline artifacts
// (translations and synthesized audio) with a bounded TTL, so a
// repeated request for the same input does not re-invoke the upstream
// provider. This is the C5 artifact cache, grounded on the cache.Cache
// interface and ErrCacheMiss sentinel in Alexander-D-Karpov/concord's
// voice-assign service, backed here by Redis via redis/go-redis/v9.
package artifactcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when key is not present (expired or never set).
var ErrMiss = errors.New("artifactcache: miss")

// Cache is the artifact cache contract the coordinator depends on,
// allowing a Redis-backed implementation in production and an in-memory
// fake in tests.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Invalidate deletes every key with the given prefix (spec.md §4.5).
	// No coordinator event calls it; cached artifacts otherwise live
	// until their TTL expires.
	Invalidate(ctx context.Context, prefix string) error
}

// RedisCache is the production Cache backed by a Redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached value for key, or ErrMiss if absent.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores value under key with the given TTL. A zero TTL means no
// expiry.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Invalidate deletes every key with the given prefix using SCAN+DEL
// rather than KEYS, so it never blocks the Redis server on a large
// keyspace (SPEC_FULL.md §4.5).
func (c *RedisCache) Invalidate(ctx context.Context, prefix string) error {
	var cursor uint64
	match := prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
