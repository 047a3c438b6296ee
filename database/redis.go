package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const REDIS_CHANNEL_CRM_EVENTS = "crm:events"

// NewRedisClient returns nil when no URI is configured; redis is optional.
func NewRedisClient(ctx context.Context, redisURI string) (*redis.Client, error) {
	if redisURI == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URI: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
