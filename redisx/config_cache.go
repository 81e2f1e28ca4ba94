package redisx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/redis/go-redis/v9"
)

type ConfigCache struct {
	rdb *redis.Client
}

func NewConfigCache(rdb *redis.Client) *ConfigCache {
	return &ConfigCache{rdb: rdb}
}

// Get reports false on a cache miss.
func (c *ConfigCache) Get(ctx context.Context, key string) (*models.SystemConfiguration, bool, error) {
	raw, err := c.rdb.Get(ctx, SystemConfigKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cfg models.SystemConfiguration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

func (c *ConfigCache) Set(ctx context.Context, cfg *models.SystemConfiguration) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, SystemConfigKey(cfg.Key), raw, TTLSystemConfig).Err()
}

func (c *ConfigCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, SystemConfigKey(key)).Err()
}
