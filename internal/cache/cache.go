package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "martilhaven:display:"

// DisplayCache keeps the last good body of read-only listings so they can be served,
// flagged stale, while the store is unavailable.
type DisplayCache interface {
	// Get returns the cached body for key. A miss is reported as ok=false with a nil error.
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte) error
	Close() error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (DisplayCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return newRedisCache(client, cfg.CacheTTLSeconds), nil
}

func newRedisCache(client *redis.Client, ttlSeconds int) *redisCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	logger.ExternalServiceCall("redis", "get", "key", key)
	body, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.ExternalServiceResult("redis", "get", nil, "hit", false)
		return nil, false, nil
	}
	logger.ExternalServiceResult("redis", "get", err, "hit", err == nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return body, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, body []byte) error {
	logger.ExternalServiceCall("redis", "set", "key", key, "bytes", len(body))
	err := c.client.Set(ctx, keyPrefix+key, body, c.ttl).Err()
	logger.ExternalServiceResult("redis", "set", err)
	if err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

type noopCache struct{}

// NewNoopCache returns a cache that never stores anything. Used when Redis is not configured.
func NewNoopCache() DisplayCache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte) error         { return nil }
func (noopCache) Close() error                                      { return nil }
