package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per caller in fixed windows backed by Redis.
// Key format: ratelimit:<caller>:<window_index>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow reports whether the caller identified by key is within its budget for
// the current window. The first request of a window sets the key expiry so
// counters clean themselves up.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.bucket(key, time.Now())
	n, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, bucket, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}

func (l *RateLimiter) bucket(key string, now time.Time) string {
	// Nanosecond arithmetic keeps sub-second windows valid; the constructor
	// guarantees window > 0.
	return fmt.Sprintf("ratelimit:%s:%d", key, now.UnixNano()/int64(l.window))
}
