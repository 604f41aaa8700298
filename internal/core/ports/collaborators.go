package ports

import (
	"context"

	"github.com/securebank/portal-api/internal/core/domain"
)

// CodeSender dispatches a 2FA code to the user over an out-of-band channel.
// The production implementation is an external email service.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// NotificationRepository persists customer-facing notifications.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	Insert(ctx context.Context, n *domain.Notification) error
}

// DocumentRepository lists account documents (statements, certificates).
type DocumentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Document, error)
}

// DeviceRegistry is the device-trust collaborator. The portal only reads and
// revokes; enrolment is owned by the external trust service.
type DeviceRegistry interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.TrustedDevice, error)
	Revoke(ctx context.Context, userID, deviceID string) error
	// Observe records the device seen on the current request.
	Observe(ctx context.Context, userID, userAgent, ip string) error
}
