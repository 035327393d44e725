package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects to Redis when REDIS_HOST is set. It returns nil when Redis is not
// configured or unreachable; callers then run without a scope cache.
func InitRedis() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		db = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		Logger.Warn("redis unavailable, scope cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	Logger.Info("redis connected", zap.String("addr", client.Options().Addr))
	return client
}

// ScopeCacheTTL reads SCOPE_CACHE_TTL (a Go duration), defaulting to five minutes.
func ScopeCacheTTL() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("SCOPE_CACHE_TTL")); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}
