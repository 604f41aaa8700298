package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrForbidden          = errors.New("access forbidden")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrChallengeNotFound = errors.New("verification code not found or expired")
	ErrChallengeExpired  = errors.New("verification code has expired")
	ErrCodeMismatch      = errors.New("invalid verification code")

	ErrSessionExpired     = errors.New("session expired due to inactivity")
	ErrSuspiciousActivity = errors.New("suspicious activity detected")
	ErrTooManyRequests    = errors.New("too many requests")

	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidAmount        = errors.New("invalid payment amount")
	ErrCSRFMismatch         = errors.New("invalid csrf token")
	ErrCannotDeleteSelf     = errors.New("cannot delete own account")
	ErrCannotDeleteAdmin    = errors.New("cannot delete admin accounts")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDeviceNotFound       = errors.New("device not found")
)

// LockedError is returned while a brute-force lockout is active. RemainingMin
// is surfaced to the client so the UI can show when to retry.
type LockedError struct {
	RemainingMin int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, try again in %d minutes", e.RemainingMin)
}

// WeakPasswordError carries the per-check results of the password policy so
// the registration endpoint can report exactly which requirements failed.
type WeakPasswordError struct {
	Requirements PasswordRequirements
}

func (e *WeakPasswordError) Error() string {
	return "password does not meet security requirements"
}

// PasswordRequirements mirrors the policy checks applied at registration.
type PasswordRequirements struct {
	MinLength           bool `json:"minLength"`
	HasUppercase        bool `json:"hasUppercase"`
	HasLowercase        bool `json:"hasLowercase"`
	HasNumbers          bool `json:"hasNumbers"`
	HasSpecialChars     bool `json:"hasSpecialChars"`
	HasNoCommonPatterns bool `json:"hasNoCommonPatterns"`
}

// OK reports whether every policy check passed.
func (r PasswordRequirements) OK() bool {
	return r.MinLength && r.HasUppercase && r.HasLowercase &&
		r.HasNumbers && r.HasSpecialChars && r.HasNoCommonPatterns
}
