// Package cache holds short-lived copies of read-only API responses.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/battery-reminder/internal/config"
)

// Cache is best effort: a miss and a backend error look the same to Get.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// New returns a Redis cache when an address is configured and an
// in-process cache otherwise.
func New(cfg config.RedisConfig) Cache {
	if cfg.Addr == "" {
		return NewMemoryCache(defaultMemorySize)
	}
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))
}

const (
	keyPrefix         = "battery-reminder:"
	defaultMemorySize = 8 * 1024 * 1024
)

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return errors.New("failed to save response into redis: " + err.Error())
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

type MemoryCache struct {
	cache *freecache.Cache
}

// NewMemoryCache creates freecache with size bytes.
func NewMemoryCache(size int) *MemoryCache {
	return &MemoryCache{cache: freecache.NewCache(size)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	data, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set rounds ttl up to whole seconds; zero means no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int((ttl + time.Second - 1) / time.Second)
	return c.cache.Set([]byte(key), value, seconds)
}
