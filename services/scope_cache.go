package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ScopeCache memoizes department scope results. Implementations must tolerate backend
// failures by behaving as a miss.
//
// Get reports the generation it looked under; Set stores under that generation so a
// result computed before an Invalidate is never served after it. A negative generation
// means the lookup failed and Set does nothing.
type ScopeCache interface {
	Get(ctx context.Context, department string) (ids []string, generation int64, ok bool)
	Set(ctx context.Context, department string, generation int64, ids []string)
	Invalidate(ctx context.Context)
}

const scopeVersionKey = "doctracker:scope:version"

// RedisScopeCache stores scope results under a generation counter; Invalidate bumps the
// generation so every department is recomputed on next read.
type RedisScopeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisScopeCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisScopeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisScopeCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisScopeCache) generation(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, scopeVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return -1, err
	}
	return version, nil
}

func scopeKey(generation int64, department string) string {
	return fmt.Sprintf("doctracker:scope:%d:%s", generation, department)
}

func (c *RedisScopeCache) Get(ctx context.Context, department string) ([]string, int64, bool) {
	generation, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("scope cache read failed", zap.Error(err))
		return nil, -1, false
	}
	raw, err := c.client.Get(ctx, scopeKey(generation, department)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("scope cache read failed", zap.Error(err))
		}
		return nil, generation, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, generation, false
	}
	return ids, generation, true
}

func (c *RedisScopeCache) Set(ctx context.Context, department string, generation int64, ids []string) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, scopeKey(generation, department), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("scope cache write failed", zap.Error(err))
	}
}

func (c *RedisScopeCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, scopeVersionKey).Err(); err != nil {
		c.logger.Warn("scope cache invalidation failed", zap.Error(err))
	}
}
