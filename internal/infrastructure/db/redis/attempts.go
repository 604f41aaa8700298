package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	attemptWindow    = 15 * time.Minute
)

// AttemptStore tracks failed login attempts in Redis so lockouts hold across
// instances. Keys:
//
//	attempts:<account|ip>  failure counter, rolling window
//	lockout:<account|ip>   present while the lockout is active
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) CheckLocked(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.lockoutKey(key)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("lockout check: %w", err)
	}
	if ttl <= 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

func (s *AttemptStore) RecordFailure(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Incr(ctx, s.attemptKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("record failure: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, s.attemptKey(key), attemptWindow).Err(); err != nil {
			return false, fmt.Errorf("record failure: %w", err)
		}
	}

	if count < maxLoginAttempts {
		return false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.lockoutKey(key), "1", lockoutDuration)
	pipe.Del(ctx, s.attemptKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("set lockout: %w", err)
	}
	return true, nil
}

func (s *AttemptStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.attemptKey(key), s.lockoutKey(key)).Err()
}

// Sweep is a no-op; Redis expires attempt and lockout keys by TTL.
func (s *AttemptStore) Sweep(context.Context) error { return nil }

func (s *AttemptStore) attemptKey(key string) string { return "attempts:" + key }
func (s *AttemptStore) lockoutKey(key string) string { return "lockout:" + key }
