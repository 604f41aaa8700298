package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/securebank/portal-api/internal/core/ports"
)

const (
	sessionTimeout = 15 * time.Minute
	rapidWindow    = 5 * time.Minute
)

// SessionStore keeps per-user session activity in Redis, keyed by user id so a
// request from a new IP is compared against the session on record.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*ports.SessionActivity, error) {
	payload, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var activity ports.SessionActivity
	if err := json.Unmarshal(payload, &activity); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &activity, nil
}

func (s *SessionStore) Put(ctx context.Context, userID string, activity ports.SessionActivity) error {
	payload, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.key(userID), payload, sessionTimeout).Err()
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID), s.rapidKey(userID)).Err()
}

func (s *SessionStore) RecordRapid(ctx context.Context, userID string) (int, error) {
	count, err := s.client.Incr(ctx, s.rapidKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("record rapid request: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, s.rapidKey(userID), rapidWindow).Err(); err != nil {
			return 0, fmt.Errorf("record rapid request: %w", err)
		}
	}
	return int(count), nil
}

// Sweep is a no-op; Redis expires session and rapid-counter keys by TTL.
func (s *SessionStore) Sweep(context.Context) error { return nil }

func (s *SessionStore) key(userID string) string      { return "session:" + userID }
func (s *SessionStore) rapidKey(userID string) string { return "rapid:" + userID }
