package cache

import (
	"context"
	"testing"
	"time"

	"martilhaven-backend/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	require.NoError(t, c.Set(ctx, "properties", []byte(`[]`)))
	body, ok, err := c.Get(ctx, "properties")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, body)
	assert.NoError(t, c.Close())
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, 24*time.Hour, newRedisCache(client, 0).ttl)
	assert.Equal(t, 5*time.Minute, newRedisCache(client, 300).ttl)
}

func TestRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "failed to connect to Redis")

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	c := newRedisCache(client, 60)
	defer c.Close()

	_, ok, err := c.Get(ctx, "properties")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "properties", []byte(`[]`)))
}
