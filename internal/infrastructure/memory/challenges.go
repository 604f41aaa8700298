package memory

import (
	"context"
	"sync"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

// ChallengeStore holds outstanding 2FA challenges in process memory.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]ports.Challenge
	now        func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]ports.Challenge),
		now:        time.Now,
	}
}

func (s *ChallengeStore) Save(_ context.Context, id string, ch ports.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[id] = ch
	return nil
}

// Get returns the challenge by id. Expired records are deleted on read.
func (s *ChallengeStore) Get(_ context.Context, id string) (*ports.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	if s.now().After(ch.ExpiresAt) {
		delete(s.challenges, id)
		return nil, domain.ErrChallengeExpired
	}
	return &ch, nil
}

func (s *ChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, id)
	return nil
}

// Sweep removes expired challenges.
func (s *ChallengeStore) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, ch := range s.challenges {
		if now.After(ch.ExpiresAt) {
			delete(s.challenges, id)
		}
	}
	return nil
}
