package ports

import (
	"context"

	"github.com/securebank/portal-api/internal/core/domain"
)

// UserActivity is a customer plus their payment volume, for staff dashboards.
type UserActivity struct {
	User         *domain.User `json:"user"`
	PaymentCount int64        `json:"paymentCount"`
	PendingCount int64        `json:"pendingCount"`
}

// EmployeeService covers staff and customer administration.
type EmployeeService interface {
	// ListStaff returns all employee and admin accounts.
	ListStaff(ctx context.Context) ([]*domain.User, error)
	// DeleteStaff removes an employee account. Self-deletion and deleting
	// admin accounts are rejected.
	DeleteStaff(ctx context.Context, actorID, targetID string) error
	// CustomerActivity lists customers with their payment counts.
	CustomerActivity(ctx context.Context) ([]*UserActivity, error)
}
