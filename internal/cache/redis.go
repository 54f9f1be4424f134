package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares cached views and group generations between server
// instances.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client. The client lifecycle stays with
// the caller.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Generation(ctx context.Context, groupID int64) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(groupID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate uses INCR, so concurrent bumps from several instances never
// collapse into one.
func (c *redisCache) Invalidate(ctx context.Context, groupID int64) error {
	return c.client.Incr(ctx, generationKey(groupID)).Err()
}

// Ping checks that Redis answers.
func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
