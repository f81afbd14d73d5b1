package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grubk/cypress-clientside/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForUnreadCount generates the Redis key for a user's unread message
// count. The database stays the source of truth; this key is dropped on
// mark-read so the next read re-derives the count.
func (c *RedisCache) KeyForUnreadCount(userID string) string {
	return fmt.Sprintf("unread:count:%s", userID)
}

func (c *RedisCache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForUnreadCount(userID), count, time.Hour).Err()
}

func (c *RedisCache) GetUnreadCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForUnreadCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *RedisCache) InvalidateUnreadCount(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, c.KeyForUnreadCount(userID)).Err()
}

// RecordFailedLogin bumps the failed-attempt counter for an email within
// a sliding window and returns the new total.
func (c *RedisCache) RecordFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := fmt.Sprintf("auth:fails:%s", email)
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, key, window).Err()
	return n, nil
}

func (c *RedisCache) FailedLoginCount(ctx context.Context, email string) (int64, error) {
	val, err := c.Client.Get(ctx, fmt.Sprintf("auth:fails:%s", email)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *RedisCache) ClearFailedLogins(ctx context.Context, email string) error {
	return c.Client.Del(ctx, fmt.Sprintf("auth:fails:%s", email)).Err()
}
