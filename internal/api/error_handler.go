package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Action,
// when present, tells the frontend how to recover.
type errorResponse struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Keeps credential failures indistinguishable from unknown accounts.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	var locked *domain.LockedError
	if errors.As(err, &locked) {
		return http.StatusLocked, errorResponse{
			Message: fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", locked.RemainingMin),
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, errorResponse{Message: "Session expired", Action: "redirect_to_login"}
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid session", Action: "redirect_to_login"}
	case errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrChallengeExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusUnauthorized, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrSuspiciousActivity):
		return http.StatusUnauthorized, errorResponse{
			Message: "Suspicious activity detected. Please log in again.",
			Action:  "redirect_to_login",
		}
	case errors.Is(err, domain.ErrCSRFMismatch):
		return http.StatusForbidden, errorResponse{Message: "Invalid CSRF token", Action: "refresh_and_retry"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "Insufficient permissions"}
	case errors.Is(err, domain.ErrCannotDeleteSelf),
		errors.Is(err, domain.ErrCannotDeleteAdmin):
		return http.StatusForbidden, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrEmployeeNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrDeviceNotFound):
		return http.StatusNotFound, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, errorResponse{Message: "Account number already registered"}
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusBadRequest, errorResponse{Message: "Email already registered"}
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrTooManyRequests):
		return http.StatusTooManyRequests, errorResponse{Message: "Too many requests. Please slow down."}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "internal server error"}
}
