package ports

import (
	"context"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
)

// PaymentCounts aggregates totals used by the employee stats view.
type PaymentCounts struct {
	Total         int64
	Pending       int64
	Verified      int64
	Sent          int64
	TotalAmount   float64
	PendingAmount float64
}

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	// FindByIDForUser retrieves a payment only when owned by userID.
	FindByIDForUser(ctx context.Context, id, userID string) (*domain.Payment, error)
	// ListByUser returns the user's payments, newest first, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.Payment, error)
	// ListByStatus returns payments in any of the given statuses, newest first.
	// An empty status slice means no status filter.
	ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int64) ([]*domain.Payment, error)
	// UpdateStatus persists the new status and returns the updated record.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error)
	Counts(ctx context.Context) (*PaymentCounts, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByUser(ctx context.Context, userID string, status domain.PaymentStatus) (int64, error)
}
