package ports

import (
	"context"

	"github.com/securebank/portal-api/internal/core/domain"
)

// AuditRepository persists the per-user security audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
	// ListByUser returns the user's events, newest first, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.SecurityEvent, error)
}
