package ports

import (
	"context"

	"github.com/securebank/portal-api/internal/core/domain"
)

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FullName string
	Email    string
}

// UserRepository defines persistence operations for portal users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateProfile persists the given fields and returns the updated record.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	// SetTwoFA toggles the 2FA flag (disabling also discards stored secret material).
	SetTwoFA(ctx context.Context, id string, enabled bool) error
	// ListByRoles returns users holding any of the given roles, newest first.
	ListByRoles(ctx context.Context, roles []string) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}
