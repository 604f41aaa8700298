package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

func TestAttemptStore_LockoutAfterFiveFailures(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewAttemptStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	key := "12345678|10.0.0.1"

	for i := 0; i < 4; i++ {
		locked, err := store.RecordFailure(ctx, key)
		if err != nil {
			t.Fatalf("record failure: %v", err)
		}
		if locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}

	locked, err := store.RecordFailure(ctx, key)
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if !locked {
		t.Fatalf("fifth failure must trigger the lockout")
	}

	isLocked, remaining, err := store.CheckLocked(ctx, key)
	if err != nil {
		t.Fatalf("check locked: %v", err)
	}
	if !isLocked || remaining <= 0 || remaining > 15*time.Minute {
		t.Fatalf("unexpected lockout state: %v %v", isLocked, remaining)
	}
}

func TestAttemptStore_ExpiredLockoutClearsOnRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewAttemptStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	key := "12345678|10.0.0.1"
	for i := 0; i < 5; i++ {
		_, _ = store.RecordFailure(ctx, key)
	}

	clock = base.Add(16 * time.Minute)
	isLocked, _, err := store.CheckLocked(ctx, key)
	if err != nil {
		t.Fatalf("check locked: %v", err)
	}
	if isLocked {
		t.Fatalf("lockout must expire after 15 minutes")
	}

	// The counter restarted; one more failure does not re-lock.
	if locked, _ := store.RecordFailure(ctx, key); locked {
		t.Fatalf("single failure after expiry must not lock")
	}
}

func TestAttemptStore_ClearOnSuccess(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()
	key := "12345678|10.0.0.1"

	for i := 0; i < 4; i++ {
		_, _ = store.RecordFailure(ctx, key)
	}
	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if locked, _ := store.RecordFailure(ctx, key); locked {
		t.Fatalf("counter survived Clear")
	}
}

func TestAttemptStore_Sweep(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewAttemptStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = store.RecordFailure(ctx, "expired|ip")
	}
	_, _ = store.RecordFailure(ctx, "counting|ip")

	clock = base.Add(16 * time.Minute)
	if err := store.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if _, ok := store.records["expired|ip"]; ok {
		t.Fatalf("expired lockout survived sweep")
	}
	if _, ok := store.records["counting|ip"]; !ok {
		t.Fatalf("active counter removed by sweep")
	}
}

func TestChallengeStore_ExpiryDeletesOnRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewChallengeStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	ch := ports.Challenge{
		Code:      "123456",
		UserID:    "user-1",
		CreatedAt: base,
		ExpiresAt: base.Add(5 * time.Minute),
	}
	if err := store.Save(ctx, "ch-1", ch); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "ch-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "123456" {
		t.Fatalf("unexpected challenge: %+v", got)
	}

	clock = base.Add(6 * time.Minute)
	if _, err := store.Get(ctx, "ch-1"); !errors.Is(err, domain.ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
	// The expired record was deleted, so a second read is a plain miss.
	if _, err := store.Get(ctx, "ch-1"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestChallengeStore_DeleteAndSweep(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewChallengeStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	_ = store.Save(ctx, "consumed", ports.Challenge{ExpiresAt: base.Add(5 * time.Minute)})
	_ = store.Save(ctx, "stale", ports.Challenge{ExpiresAt: base.Add(time.Minute)})
	_ = store.Save(ctx, "fresh", ports.Challenge{ExpiresAt: base.Add(10 * time.Minute)})

	if err := store.Delete(ctx, "consumed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "consumed"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}

	clock = base.Add(2 * time.Minute)
	if err := store.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, ok := store.challenges["stale"]; ok {
		t.Fatalf("stale challenge survived sweep")
	}
	if _, ok := store.challenges["fresh"]; !ok {
		t.Fatalf("fresh challenge removed by sweep")
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown session, got %+v", got)
	}

	activity := ports.SessionActivity{
		UserID:    "user-1",
		IP:        "10.0.0.1",
		UserAgent: "test-agent",
		LastSeen:  time.Now(),
	}
	if err := store.Put(ctx, "user-1", activity); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err = store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.IP != "10.0.0.1" || got.UserAgent != "test-agent" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := store.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := store.Get(ctx, "user-1"); got != nil {
		t.Fatalf("record survived delete")
	}
}

func TestSessionStore_RapidCounter(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := store.RecordRapid(ctx, "user-1")
		if err != nil {
			t.Fatalf("record rapid: %v", err)
		}
		if n != want {
			t.Fatalf("expected count %d, got %d", want, n)
		}
	}

	// Terminating the session resets the counter too.
	_ = store.Delete(ctx, "user-1")
	if n, _ := store.RecordRapid(ctx, "user-1"); n != 1 {
		t.Fatalf("counter survived delete: %d", n)
	}
}

func TestSessionStore_Sweep(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewSessionStore()
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	_ = store.Put(ctx, "idle", ports.SessionActivity{UserID: "idle", LastSeen: base.Add(-20 * time.Minute)})
	_ = store.Put(ctx, "active", ports.SessionActivity{UserID: "active", LastSeen: base.Add(-time.Minute)})
	_, _ = store.RecordRapid(ctx, "active")

	if err := store.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if got, _ := store.Get(ctx, "idle"); got != nil {
		t.Fatalf("idle session survived sweep")
	}
	if got, _ := store.Get(ctx, "active"); got == nil {
		t.Fatalf("active session removed by sweep")
	}
	// Rapid counters restart each sweep window.
	if n, _ := store.RecordRapid(ctx, "active"); n != 1 {
		t.Fatalf("rapid counter not reset by sweep: %d", n)
	}
}
