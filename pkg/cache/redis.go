package cache

import (
	"context"
	"time"

	rediscache "github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
)

type redisCache struct {
	c *rediscache.Cache
}

// NewRedisCache returns a cache backed by a redis connection
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{
		c: rediscache.New(&rediscache.Options{
			Redis:      client,
			LocalCache: rediscache.NewTinyLFU(1000, time.Minute),
		}),
	}
}

// Set stores a marshalled value in redis with the given ttl. A negative ttl
// means the entry is already expired, so it is dropped instead of stored.
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		return r.c.Delete(ctx, key)
	}
	return r.c.Set(&rediscache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

// Get retrieves an entry. value must be passed as reference
func (r *redisCache) Get(ctx context.Context, key string, value any) bool {
	return r.c.Get(ctx, key, value) == nil
}

// Exists tells whether the key is cached
func (r *redisCache) Exists(ctx context.Context, key string) bool {
	return r.c.Exists(ctx, key)
}

// Delete removes an entry from redis
func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.c.Delete(ctx, key)
}
