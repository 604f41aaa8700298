package ports

import (
	"context"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
)

// NotificationList is a page of notifications plus the unread total.
type NotificationList struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
	TotalCount    int                    `json:"totalCount"`
}

// ProfileService covers the customer profile surface.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	// Update changes name/email, rejecting an email already held by another user.
	Update(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	Notifications(ctx context.Context, userID string) (*NotificationList, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	Documents(ctx context.Context, userID string) ([]*domain.Document, error)
}

// SecuritySettings is the user-visible security configuration.
type SecuritySettings struct {
	TwoFactorEnabled     bool      `json:"twoFactorEnabled"`
	LoginNotifications   bool      `json:"loginNotifications"`
	PaymentNotifications bool      `json:"paymentNotifications"`
	SecurityAlerts       bool      `json:"securityAlerts"`
	SessionTimeoutMin    int       `json:"sessionTimeout"`
	AccountCreated       time.Time `json:"accountCreated"`
}

// SecuritySettingsUpdate carries optional toggles; nil means unchanged.
type SecuritySettingsUpdate struct {
	LoginNotifications   *bool
	PaymentNotifications *bool
	SecurityAlerts       *bool
	SessionTimeoutMin    *int
}

// EventSummary aggregates the audit trail by risk level.
type EventSummary struct {
	TotalEvents      int        `json:"totalEvents"`
	HighRiskEvents   int        `json:"highRiskEvents"`
	MediumRiskEvents int        `json:"mediumRiskEvents"`
	LowRiskEvents    int        `json:"lowRiskEvents"`
	LastActivity     *time.Time `json:"lastActivity,omitempty"`
}

// SecurityService covers the customer security surface: audit trail, settings,
// and the device-trust registry.
type SecurityService interface {
	Events(ctx context.Context, userID string) ([]*domain.SecurityEvent, *EventSummary, error)
	Settings(ctx context.Context, userID string) (*SecuritySettings, error)
	UpdateSettings(ctx context.Context, userID string, update SecuritySettingsUpdate) (*SecuritySettings, error)
	Devices(ctx context.Context, userID string) ([]*domain.TrustedDevice, error)
	RevokeDevice(ctx context.Context, userID, deviceID string) error
}
