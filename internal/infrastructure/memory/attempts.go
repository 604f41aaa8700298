package memory

import (
	"context"
	"sync"
	"time"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type attemptRecord struct {
	count       int
	lockedUntil time.Time
}

// AttemptStore tracks failed login attempts in process memory. State is not
// shared across instances; a horizontally scaled deployment should use the
// Redis implementation instead.
type AttemptStore struct {
	mu      sync.Mutex
	records map[string]*attemptRecord
	now     func() time.Time
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		records: make(map[string]*attemptRecord),
		now:     time.Now,
	}
}

func (s *AttemptStore) CheckLocked(_ context.Context, key string) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || rec.lockedUntil.IsZero() {
		return false, 0, nil
	}

	remaining := rec.lockedUntil.Sub(s.now())
	if remaining <= 0 {
		// Lockout served; the counter starts over.
		delete(s.records, key)
		return false, 0, nil
	}
	return true, remaining, nil
}

func (s *AttemptStore) RecordFailure(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		rec = &attemptRecord{}
		s.records[key] = rec
	}

	rec.count++
	if rec.count >= maxLoginAttempts && rec.lockedUntil.IsZero() {
		rec.lockedUntil = s.now().Add(lockoutDuration)
		return true, nil
	}
	return false, nil
}

func (s *AttemptStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Sweep removes records whose lockout has expired.
func (s *AttemptStore) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, rec := range s.records {
		if !rec.lockedUntil.IsZero() && now.After(rec.lockedUntil) {
			delete(s.records, key)
		}
	}
	return nil
}
