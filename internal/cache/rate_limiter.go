package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter
type RateLimiter interface {
	// Allow counts one request for key and reports whether it is within
	// limit for the current window. A non-positive limit always allows.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) RateLimiter {
	return &rateLimiter{client: client}
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	k := "ratelimit:" + key
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	// first hit opens the window
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}
