// Package cache is a thin read-through layer over redis for remote content
// that is identical for every learner (question sets, quiz metadata). It is
// strictly optional: a nil client disables it, and any redis failure degrades
// to a cache miss so the learning API remains the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// New builds a cache. rdb may be nil, yielding a disabled cache whose reads
// always miss and whose writes are no-ops.
func New(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get unmarshals the cached value at key into out. The second return is true
// only on a clean hit.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// Set stores value at key for the configured TTL. Failures are logged and
// swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
