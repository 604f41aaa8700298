package memory

import (
	"context"
	"sync"
	"time"

	"github.com/securebank/portal-api/internal/core/ports"
)

const sessionTimeout = 15 * time.Minute

// SessionStore tracks per-user session activity in process memory. Records are
// keyed by user id so an IP change on an existing session is observable.
type SessionStore struct {
	mu      sync.Mutex
	records map[string]ports.SessionActivity
	rapid   map[string]int
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		records: make(map[string]ports.SessionActivity),
		rapid:   make(map[string]int),
		now:     time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, userID string) (*ports.SessionActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *SessionStore) Put(_ context.Context, userID string, activity ports.SessionActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = activity
	return nil
}

func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	delete(s.rapid, userID)
	return nil
}

func (s *SessionStore) RecordRapid(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rapid[userID]++
	return s.rapid[userID], nil
}

// Sweep removes records idle past the session timeout and resets every
// rapid-request counter.
func (s *SessionStore) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, rec := range s.records {
		if now.Sub(rec.LastSeen) > sessionTimeout {
			delete(s.records, id)
		}
	}
	s.rapid = make(map[string]int)
	return nil
}
