package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/settings"
	goredis "github.com/redis/go-redis/v9"
)

var _ settings.Cache = (*SettingsCache)(nil)

// SettingsCache keeps resolved plugin settings in Redis.
type SettingsCache struct {
	client *goredis.Client
}

func NewSettingsCache(client *goredis.Client) (*SettingsCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &SettingsCache{client: client}, nil
}

func (c *SettingsCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return value, true, nil
}

func (c *SettingsCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *SettingsCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}
