package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/metrics"
	"github.com/securebank/portal-api/internal/api/middleware"
	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

// AuthHandler owns the registration, login, 2FA, and logout endpoints. Session
// credentials travel only in cookies; the CSRF token is additionally returned
// in the body so the frontend can mirror it into the request header.
type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionStore
	cookies  session.CookieConfig
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionStore, cookies session.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookies: cookies}
}

type registerRequest struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	AccountNumber string `json:"accountNumber" validate:"required,account_number"`
	Password      string `json:"password" validate:"required"`
}

type loginRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,login_account"`
	Password      string `json:"password" validate:"required"`
}

type verifyTwoFARequest struct {
	TempToken string `json:"tempToken" validate:"required"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

type sessionResponse struct {
	Message   string       `json:"message"`
	User      *domain.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
}

type twoFARequiredResponse struct {
	Message           string `json:"message"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	TempToken         string `json:"tempToken"`
	Method            string `json:"method"`
}

// Register creates a customer account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	user, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		FullName:      req.FullName,
		Email:         req.Email,
		AccountNumber: req.AccountNumber,
		Password:      req.Password,
	})
	if err != nil {
		var weak *domain.WeakPasswordError
		if errors.As(err, &weak) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"message":      "Password does not meet security requirements",
				"requirements": weak.Requirements,
			})
		}
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message":       "Registration successful",
		"accountNumber": user.AccountNumber,
	})
}

// Login authenticates with account number and password. Accounts with 2FA
// enabled receive a challenge token instead of session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	result, err := h.auth.Login(c.Request().Context(), req.AccountNumber, req.Password, c.RealIP())
	if err != nil {
		var locked *domain.LockedError
		if errors.As(err, &locked) {
			metrics.LoginsTotal.WithLabelValues("locked").Inc()
			metrics.LockoutsTotal.Inc()
			return err
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	if result.RequiresTwoFactor {
		metrics.LoginsTotal.WithLabelValues("twofa_required").Inc()
		return c.JSON(http.StatusOK, twoFARequiredResponse{
			Message:           "2FA code sent to your email",
			RequiresTwoFactor: true,
			TempToken:         result.TempToken,
			Method:            "email",
		})
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.cookies.Set(c, result.Tokens)
	return c.JSON(http.StatusOK, sessionResponse{
		Message:   "Login successful",
		User:      result.User,
		CSRFToken: result.Tokens.CSRFToken,
	})
}

// VerifyTwoFA completes a pending 2FA login with the emailed code.
func (h *AuthHandler) VerifyTwoFA(c echo.Context) error {
	var req verifyTwoFARequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	result, err := h.auth.VerifyTwoFactor(c.Request().Context(), req.TempToken, req.Code)
	if err != nil {
		metrics.TwoFAVerificationsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.TwoFAVerificationsTotal.WithLabelValues("success").Inc()
	h.cookies.Set(c, result.Tokens)
	return c.JSON(http.StatusOK, sessionResponse{
		Message:   "2FA verification successful",
		User:      result.User,
		CSRFToken: result.Tokens.CSRFToken,
	})
}

// Logout terminates the session and expires all session cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	if uid, _ := c.Get(middleware.CtxUserID).(string); uid != "" {
		_ = h.sessions.Delete(c.Request().Context(), uid)
	}
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logout successful",
		"action":  "redirect_to_login",
	})
}

// SetupTwoFA enables email-based 2FA for the authenticated user.
func (h *AuthHandler) SetupTwoFA(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.auth.SetupTwoFactor(c.Request().Context(), uid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":     "Two-factor authentication enabled",
		"method":      "email",
		"description": "A verification code will be sent to your email at each login",
	})
}

// DisableTwoFA turns 2FA off for the authenticated user.
func (h *AuthHandler) DisableTwoFA(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.auth.DisableTwoFactor(c.Request().Context(), uid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Two-factor authentication disabled",
	})
}
