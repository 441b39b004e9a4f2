package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// ErrUnavailable is returned by every call once the startup ping has failed
var ErrUnavailable = errors.New("redis unavailable")

// RedisCache stores responses in Redis with native key expiry
type RedisCache struct {
	rdb         *redis.Client
	logger      *zap.Logger
	unavailable bool
}

// NewRedisCache creates a Redis cache from a redis:// or rediss:// URL.
// An unreachable server is logged, not fatal: every later call fails fast
// with ErrUnavailable, which callers treat as a miss.
func NewRedisCache(ctx context.Context, url string, dialTimeout time.Duration, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if dialTimeout > 0 {
		opts.DialTimeout = dialTimeout
	}

	c := &RedisCache{
		rdb:    redis.NewClient(opts),
		logger: logger,
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, responses will not be cached",
			zap.String("addr", opts.Addr),
			zap.Error(err))
		c.unavailable = true
	}

	return c, nil
}

// Get retrieves a cached response
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	if c.unavailable {
		return "", ErrUnavailable
	}
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to query redis: %w", err)
	}
	return value, nil
}

// Set stores a response for ttl
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.unavailable {
		return ErrUnavailable
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store response in redis: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.unavailable {
		return ErrUnavailable
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete redis key: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Close closes the Redis connection pool
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
