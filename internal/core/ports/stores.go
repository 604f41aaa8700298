package ports

import (
	"context"
	"time"
)

// AttemptStore tracks failed login attempts keyed by account+IP. Failures are
// recorded identically whether the account exists or not, so the store cannot
// be used for account enumeration.
type AttemptStore interface {
	// CheckLocked reports whether the key is currently locked out and, if so,
	// how long remains. An expired lockout is cleared on read.
	CheckLocked(ctx context.Context, key string) (bool, time.Duration, error)
	// RecordFailure increments the failure counter and reports whether this
	// failure triggered a lockout.
	RecordFailure(ctx context.Context, key string) (bool, error)
	// Clear removes the record, called on successful authentication.
	Clear(ctx context.Context, key string) error
	// Sweep removes records whose lockout has expired.
	Sweep(ctx context.Context) error
}

// Challenge is an outstanding emailed 2FA code.
type Challenge struct {
	Code      string
	UserID    string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ChallengeStore holds outstanding 2FA challenges keyed by an opaque id.
type ChallengeStore interface {
	Save(ctx context.Context, id string, ch Challenge) error
	// Get returns the challenge or ErrChallengeNotFound; an expired record is
	// deleted on read and reported as ErrChallengeExpired.
	Get(ctx context.Context, id string) (*Challenge, error)
	Delete(ctx context.Context, id string) error
	// Sweep removes expired challenges.
	Sweep(ctx context.Context) error
}

// SessionActivity is the last-seen record for a user's session.
type SessionActivity struct {
	UserID    string
	IP        string
	UserAgent string
	LastSeen  time.Time
}

// SessionStore tracks per-user session activity for idle-timeout and anomaly
// detection. Records are keyed by user id; the IP is compared as a field so an
// address change on an existing session is observable.
type SessionStore interface {
	// Get returns the activity record, or nil when none exists.
	Get(ctx context.Context, userID string) (*SessionActivity, error)
	Put(ctx context.Context, userID string, activity SessionActivity) error
	Delete(ctx context.Context, userID string) error
	// RecordRapid increments the rapid-request counter and returns its value.
	RecordRapid(ctx context.Context, userID string) (int, error)
	// Sweep removes records idle past the session timeout and resets all
	// rapid-request counters.
	Sweep(ctx context.Context) error
}
