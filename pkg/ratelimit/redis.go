package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

type RedisLimiter struct {
	rc     *redis.Client
	scope  string
	limit  int
	window time.Duration
}

func NewRedisLimiter(rc *redis.Client, scope string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rc:     rc,
		scope:  scope,
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) getKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, l.scope, key)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.getKey(key)

	pipe := l.rc.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to increment counter: %w", err)
	}

	// the first hit of a window, or a key that lost its ttl, starts a new window
	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := l.rc.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set counter expiration: %w", err)
		}
	}

	return incr.Val() <= int64(l.limit), nil
}
