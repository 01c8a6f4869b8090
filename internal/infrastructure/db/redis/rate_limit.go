package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore is a fixed-window counter satisfying echo's
// middleware.RateLimiterStore, shared by every API instance.
// Key format: ratelimit:<scope>:<identifier>:<window_start_unix>
type RateLimitStore struct {
	client  *redis.Client
	scope   string
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewRateLimitStore allows limit calls per identifier in each window.
func NewRateLimitStore(client *redis.Client, scope string, limit int, window time.Duration) *RateLimitStore {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{
		client:  client,
		scope:   scope,
		limit:   int64(limit),
		window:  window,
		timeout: time.Second,
		now:     time.Now,
	}
}

// Allow increments the identifier's counter for the current window. When
// Redis is unreachable the call is allowed and the error is returned for
// logging only.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier, s.now())
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	start := now.Truncate(s.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.scope, identifier, start)
}
