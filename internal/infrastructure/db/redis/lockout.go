package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LockoutStore counts failed login attempts per key backed by Redis.
// Key format: lockout:<normalized_username>. The counter expires after
// the configured window, which doubles as the lockout duration.
type LockoutStore struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLockoutStore creates a LockoutStore wrapping the given Redis client.
// Non-positive settings fall back to defaults.
func NewLockoutStore(client *redis.Client, maxAttempts int, window time.Duration) *LockoutStore {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LockoutStore{client: client, maxAttempts: maxAttempts, window: window}
}

// TooMany reports whether the key has reached the attempt limit.
func (s *LockoutStore) TooMany(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Get(ctx, s.key(key)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n >= s.maxAttempts, nil
}

// RecordFailure counts one failed attempt; the first failure starts the
// expiry window.
func (s *LockoutStore) RecordFailure(ctx context.Context, key string) error {
	k := s.key(key)
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("lockout incr: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
			return fmt.Errorf("lockout expire: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (s *LockoutStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("lockout reset: %w", err)
	}
	return nil
}

func (s *LockoutStore) key(username string) string {
	return "lockout:" + username
}
