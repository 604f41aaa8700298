package ports

import (
	"context"

	"github.com/securebank/portal-api/internal/core/domain"
)

// RegisterInput carries customer self-registration data. Validation of the
// field formats happens at the transport layer; the password policy is
// enforced by the service.
type RegisterInput struct {
	FullName      string
	Email         string
	AccountNumber string
	Password      string
}

// RegisterStaffInput carries admin-driven employee/admin creation data.
type RegisterStaffInput struct {
	FullName      string
	Email         string
	AccountNumber string
	Password      string
	Role          string
}

// SessionTokens is a full set of session credentials issued on successful
// authentication.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	CSRFToken    string
}

// LoginResult is the outcome of a credential check. When the account has 2FA
// enabled, Tokens is nil and TempToken carries the signed challenge token the
// client must echo back to VerifyTwoFactor.
type LoginResult struct {
	User              *domain.User
	Tokens            *SessionTokens
	RequiresTwoFactor bool
	TempToken         string
}

// AuthService implements registration, login, and the email 2FA flow.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	RegisterStaff(ctx context.Context, input RegisterStaffInput) (*domain.User, error)
	// Login authenticates by account number + password. ip participates in the
	// brute-force lockout key.
	Login(ctx context.Context, accountNumber, password, ip string) (*LoginResult, error)
	// VerifyTwoFactor completes a pending 2FA flow. The challenge is consumed
	// on success.
	VerifyTwoFactor(ctx context.Context, tempToken, code string) (*LoginResult, error)
	SetupTwoFactor(ctx context.Context, userID string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}
