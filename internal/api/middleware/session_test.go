package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
	"github.com/securebank/portal-api/internal/core/service"
)

type stubSessionStore struct {
	records map[string]ports.SessionActivity
	rapid   map[string]int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		records: make(map[string]ports.SessionActivity),
		rapid:   make(map[string]int),
	}
}

func (s *stubSessionStore) Get(_ context.Context, userID string) (*ports.SessionActivity, error) {
	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *stubSessionStore) Put(_ context.Context, userID string, activity ports.SessionActivity) error {
	s.records[userID] = activity
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, userID string) error {
	delete(s.records, userID)
	delete(s.rapid, userID)
	return nil
}

func (s *stubSessionStore) RecordRapid(_ context.Context, userID string) (int, error) {
	s.rapid[userID]++
	return s.rapid[userID], nil
}

func (s *stubSessionStore) Sweep(context.Context) error { return nil }

type stubRecorder struct {
	events []ports.AuditEventInput
}

func (r *stubRecorder) Enqueue(event ports.AuditEventInput) {
	r.events = append(r.events, event)
}

type guardFixture struct {
	guard *SessionGuard
	store *stubSessionStore
	audit *stubRecorder
	clock *time.Time
}

func newGuardFixture() *guardFixture {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &base

	store := newStubSessionStore()
	audit := &stubRecorder{}
	issuer := service.NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)
	guard := NewSessionGuard(store, issuer, testCookieConfig(), audit, nil, zerolog.Nop())
	guard.now = func() time.Time { return *clock }

	return &guardFixture{guard: guard, store: store, audit: audit, clock: clock}
}

func (f *guardFixture) request(t *testing.T, method, path, ip, ua string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":51234"
	req.Header.Set("User-Agent", ua)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserID, "user-1")
	c.Set(CtxAccountNumber, "12345678")
	c.Set(CtxRole, domain.RoleCustomer)

	handler := f.guard.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestSessionGuard_FirstRequestRecordsActivity(t *testing.T) {
	f := newGuardFixture()

	if rec := f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stored, ok := f.store.records["user-1"]
	if !ok {
		t.Fatalf("activity not recorded")
	}
	if stored.IP != "10.0.0.1" || stored.UserAgent != "agent-a" {
		t.Fatalf("unexpected activity: %+v", stored)
	}
}

func TestSessionGuard_IdleTimeout(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	*f.clock = f.clock.Add(16 * time.Minute)
	rec := f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inactivity") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if _, ok := f.store.records["user-1"]; ok {
		t.Fatalf("idle session not terminated")
	}
}

func TestSessionGuard_IPChangeTerminates(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	*f.clock = f.clock.Add(time.Minute)
	rec := f.request(t, http.MethodGet, "/v1/profile", "203.0.113.9", "agent-a")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if _, ok := f.store.records["user-1"]; ok {
		t.Fatalf("hijacked session not terminated")
	}

	var flagged bool
	for _, ev := range f.audit.events {
		if ev.EventType == domain.EventSuspiciousAccess && ev.RiskLevel == domain.RiskHigh {
			flagged = true
		}
	}
	if !flagged {
		t.Fatalf("ip change not recorded as suspicious: %+v", f.audit.events)
	}
}

func TestSessionGuard_UserAgentDriftWarnsOnly(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	*f.clock = f.clock.Add(time.Minute)
	rec := f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-b")
	if rec.Code != http.StatusOK {
		t.Fatalf("user-agent drift must not block: got %d", rec.Code)
	}

	var logged bool
	for _, ev := range f.audit.events {
		if ev.EventType == domain.EventSuspiciousAccess && ev.RiskLevel == domain.RiskMedium {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("user-agent drift not audited")
	}
}

func TestSessionGuard_RapidBurst(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	// Sub-second requests increment the counter; past the threshold the
	// session is terminated with a throttle status.
	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		*f.clock = f.clock.Add(100 * time.Millisecond)
		last = f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last.Code)
	}
	if _, ok := f.store.records["user-1"]; ok {
		t.Fatalf("bursting session not terminated")
	}
}

func TestSessionGuard_CriticalPathRotatesCookies(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	*f.clock = f.clock.Add(2 * time.Second)
	rec := f.request(t, http.MethodPost, "/v1/payments", "10.0.0.1", "agent-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	names := make(map[string]bool)
	for _, sc := range rec.Result().Cookies() {
		if sc.Value != "" {
			names[sc.Name] = true
		}
	}
	for _, want := range []string{session.AccessCookie, session.RefreshCookie, "csrf_token"} {
		if !names[want] {
			t.Fatalf("cookie %s not rotated; got %v", want, names)
		}
	}
}

func TestSessionGuard_ReadPathDoesNotRotate(t *testing.T) {
	f := newGuardFixture()
	f.request(t, http.MethodGet, "/v1/profile", "10.0.0.1", "agent-a")

	*f.clock = f.clock.Add(2 * time.Second)
	rec := f.request(t, http.MethodGet, "/v1/payments", "10.0.0.1", "agent-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("read request must not touch cookies: %v", cookies)
	}
}
