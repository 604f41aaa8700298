package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
	"github.com/securebank/portal-api/internal/core/service"
)

type stubAuthService struct {
	registered  *ports.RegisterInput
	loginResult *ports.LoginResult
	loginErr    error
	verify2FA   *ports.LoginResult
	verifyErr   error
}

func (s *stubAuthService) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Password == "weak" {
		return nil, &domain.WeakPasswordError{Requirements: service.CheckPasswordStrength(input.Password)}
	}
	s.registered = &input
	return &domain.User{
		ID:            "user-1",
		FullName:      input.FullName,
		Email:         input.Email,
		AccountNumber: input.AccountNumber,
		Role:          domain.RoleCustomer,
	}, nil
}

func (s *stubAuthService) RegisterStaff(context.Context, ports.RegisterStaffInput) (*domain.User, error) {
	return nil, nil
}

func (s *stubAuthService) Login(context.Context, string, string, string) (*ports.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) VerifyTwoFactor(context.Context, string, string) (*ports.LoginResult, error) {
	return s.verify2FA, s.verifyErr
}

func (s *stubAuthService) SetupTwoFactor(context.Context, string) error   { return nil }
func (s *stubAuthService) DisableTwoFactor(context.Context, string) error { return nil }

type stubSessions struct {
	deleted []string
}

func (s *stubSessions) Get(context.Context, string) (*ports.SessionActivity, error) {
	return nil, nil
}
func (s *stubSessions) Put(context.Context, string, ports.SessionActivity) error { return nil }
func (s *stubSessions) Delete(_ context.Context, userID string) error {
	s.deleted = append(s.deleted, userID)
	return nil
}
func (s *stubSessions) RecordRapid(context.Context, string) (int, error) { return 0, nil }
func (s *stubSessions) Sweep(context.Context) error                      { return nil }

func authTestServer(svc *stubAuthService, sessions *stubSessions) (*echo.Echo, *AuthHandler) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewAuthHandler(svc, sessions, session.CookieConfig{
		CSRFName:   "csrf_token",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 168 * time.Hour,
	})
	return e, h
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{}
	e, h := authTestServer(svc, &stubSessions{})

	c, rec := postJSON(e, "/v1/auth/register",
		`{"fullName":"Alice Smith","email":"alice@example.com","accountNumber":"12345678","password":"Str0ng&Secure!Pass"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.registered == nil || svc.registered.AccountNumber != "12345678" {
		t.Fatalf("service not called with parsed input: %+v", svc.registered)
	}
}

func TestAuthHandler_Register_WeakPasswordListsRequirements(t *testing.T) {
	svc := &stubAuthService{}
	e, h := authTestServer(svc, &stubSessions{})

	c, rec := postJSON(e, "/v1/auth/register",
		`{"fullName":"Alice Smith","email":"alice@example.com","accountNumber":"12345678","password":"weak"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Message      string                      `json:"message"`
		Requirements domain.PasswordRequirements `json:"requirements"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Requirements.MinLength {
		t.Fatalf("expected failed length requirement in response: %+v", body.Requirements)
	}
}

func TestAuthHandler_Register_BadAccountNumber(t *testing.T) {
	svc := &stubAuthService{}
	e, h := authTestServer(svc, &stubSessions{})

	c, rec := postJSON(e, "/v1/auth/register",
		`{"fullName":"Alice Smith","email":"alice@example.com","accountNumber":"12ab","password":"Str0ng&Secure!Pass"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "8-12 digits") {
		t.Fatalf("expected format message, got: %s", rec.Body.String())
	}
	if svc.registered != nil {
		t.Fatalf("service must not be called on validation failure")
	}
}

func TestAuthHandler_Login_SetsSessionCookies(t *testing.T) {
	svc := &stubAuthService{
		loginResult: &ports.LoginResult{
			User: &domain.User{ID: "user-1", AccountNumber: "12345678", Role: domain.RoleCustomer},
			Tokens: &ports.SessionTokens{
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
				CSRFToken:    "csrf-value",
			},
		},
	}
	e, h := authTestServer(svc, &stubSessions{})

	c, rec := postJSON(e, "/v1/auth/login", `{"accountNumber":"12345678","password":"Str0ng&Secure!Pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}

	access, ok := byName[session.AccessCookie]
	if !ok || !access.HttpOnly || access.SameSite != http.SameSiteStrictMode {
		t.Fatalf("access cookie missing or misconfigured: %+v", access)
	}
	if refresh, ok := byName[session.RefreshCookie]; !ok || !refresh.HttpOnly {
		t.Fatalf("refresh cookie missing or not HttpOnly: %+v", refresh)
	}
	csrf, ok := byName["csrf_token"]
	if !ok || csrf.HttpOnly {
		t.Fatalf("csrf cookie must exist and be readable by the frontend: %+v", csrf)
	}

	var body sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.CSRFToken != "csrf-value" {
		t.Fatalf("csrf token not mirrored into body: %+v", body)
	}
}

func TestAuthHandler_Login_TwoFARequired(t *testing.T) {
	svc := &stubAuthService{
		loginResult: &ports.LoginResult{
			User:              &domain.User{ID: "user-1"},
			RequiresTwoFactor: true,
			TempToken:         "temp-jwt",
		},
	}
	e, h := authTestServer(svc, &stubSessions{})

	c, rec := postJSON(e, "/v1/auth/login", `{"accountNumber":"12345678","password":"Str0ng&Secure!Pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no session cookies before 2FA verification")
	}

	var body twoFARequiredResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.RequiresTwoFactor || body.TempToken != "temp-jwt" || body.Method != "email" {
		t.Fatalf("unexpected challenge response: %+v", body)
	}
}

func TestAuthHandler_Login_LockedPropagates(t *testing.T) {
	svc := &stubAuthService{loginErr: &domain.LockedError{RemainingMin: 12}}
	e, h := authTestServer(svc, &stubSessions{})

	c, _ := postJSON(e, "/v1/auth/login", `{"accountNumber":"12345678","password":"whatever"}`)
	err := h.Login(c)

	var locked *domain.LockedError
	if !errors.As(err, &locked) || locked.RemainingMin != 12 {
		t.Fatalf("expected LockedError to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sessions := &stubSessions{}
	e, h := authTestServer(&stubAuthService{}, sessions)

	c, rec := postJSON(e, "/v1/auth/logout", "")
	c.Set("uid", "user-1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "user-1" {
		t.Fatalf("session activity not deleted: %v", sessions.deleted)
	}

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 {
			t.Fatalf("cookie %s not expired on logout", ck.Name)
		}
	}
	if len(rec.Result().Cookies()) != 3 {
		t.Fatalf("expected all three cookies expired, got %d", len(rec.Result().Cookies()))
	}
}
