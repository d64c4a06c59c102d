package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache wraps the heavier aggregation queries in a Redis TTL cache.
// A nil Cache (or nil client) disables caching transparently.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// GetJSON loads the cached value into dest. It returns false on miss or
// any cache failure; the caller falls through to the database.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("recommendation cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("recommendation cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores the value under key, best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, val any) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(val)
	if err != nil {
		c.log.Warn("recommendation cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("recommendation cache write failed", zap.String("key", key), zap.Error(err))
	}
}
