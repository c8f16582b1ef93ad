package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// redisService counts requests in fixed windows backed by Redis so limits
// hold across replicas. The caller owns the client's lifecycle.
type redisService struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisService wraps an already-connected Redis client.
func NewRedisService(client *redis.Client, log logger.Logger) inbound.RateLimitService {
	return &redisService{client: client, log: log}
}

func (s *redisService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	redisKey := "ratelimit:" + key

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	count := incr.Val()
	if count <= int64(limit) {
		return true, 0, nil
	}

	retryAfter := window
	if ttl, err := s.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	}

	s.log.Debug(ctx, "Rate limit exceeded", map[string]interface{}{
		"key":         key,
		"count":       count,
		"limit":       limit,
		"retry_after": retryAfter.Seconds(),
	})
	return false, retryAfter, nil
}
