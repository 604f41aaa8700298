package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

// ChallengeStore keeps outstanding 2FA challenges in Redis with a TTL matching
// their expiry, so challenges survive a restart and vanish on their own.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Save(ctx context.Context, id string, ch ports.Challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}

	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrChallengeExpired
	}
	return s.client.Set(ctx, s.key(id), payload, ttl).Err()
}

func (s *ChallengeStore) Get(ctx context.Context, id string) (*ports.Challenge, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	var ch ports.Challenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	if time.Now().After(ch.ExpiresAt) {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, domain.ErrChallengeExpired
	}
	return &ch, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Sweep is a no-op; Redis expires challenge keys by TTL.
func (s *ChallengeStore) Sweep(context.Context) error { return nil }

func (s *ChallengeStore) key(id string) string { return "challenge:" + id }
