// Package cache provides a small time-boxed read-through cache on redis,
// used by the list endpoints and invalidated explicitly on every mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Cache wraps a redis client. A nil *Cache is valid and disables caching,
// so callers never have to branch on whether redis is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// Config defines the cache configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to redis and returns a cache client
func New(cfg *Config, log *logger.Logger) (*Cache, error) {
	if log == nil {
		log = logger.L()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info("cache connected", zap.String("addr", cfg.Addr))

	return &Cache{
		client: client,
		ttl:    cfg.TTL,
		logger: log,
	}, nil
}

// Get reads a cached value into dest, returning false on miss
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a value under key with the configured TTL; failures are logged, not returned
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidatePrefix removes every key under the given prefix
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// Close closes the underlying redis connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
