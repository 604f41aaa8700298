package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

const (
	eventListLimit           = 100
	defaultSessionTimeoutMin = 15
)

// SecurityService implements the customer security surface: audit trail,
// settings, and the device-trust registry. Notification preferences live with
// an external preference service; the update call merges and echoes them.
type SecurityService struct {
	users   ports.UserRepository
	audit   ports.AuditRepository
	devices ports.DeviceRegistry
	log     zerolog.Logger
}

func NewSecurityService(users ports.UserRepository, audit ports.AuditRepository, devices ports.DeviceRegistry, log zerolog.Logger) *SecurityService {
	return &SecurityService{users: users, audit: audit, devices: devices, log: log}
}

// Events returns the user's audit trail, newest first, with a risk summary.
func (s *SecurityService) Events(ctx context.Context, userID string) ([]*domain.SecurityEvent, *ports.EventSummary, error) {
	events, err := s.audit.ListByUser(ctx, userID, eventListLimit)
	if err != nil {
		return nil, nil, err
	}

	summary := &ports.EventSummary{TotalEvents: len(events)}
	for _, e := range events {
		switch e.RiskLevel {
		case domain.RiskHigh:
			summary.HighRiskEvents++
		case domain.RiskMedium:
			summary.MediumRiskEvents++
		default:
			summary.LowRiskEvents++
		}
	}
	if len(events) > 0 {
		ts := events[0].Timestamp
		summary.LastActivity = &ts
	}
	return events, summary, nil
}

func (s *SecurityService) Settings(ctx context.Context, userID string) (*ports.SecuritySettings, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ports.SecuritySettings{
		TwoFactorEnabled:     user.TwoFAEnabled,
		LoginNotifications:   true,
		PaymentNotifications: true,
		SecurityAlerts:       true,
		SessionTimeoutMin:    defaultSessionTimeoutMin,
		AccountCreated:       user.CreatedAt,
	}, nil
}

func (s *SecurityService) UpdateSettings(ctx context.Context, userID string, update ports.SecuritySettingsUpdate) (*ports.SecuritySettings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.LoginNotifications != nil {
		settings.LoginNotifications = *update.LoginNotifications
	}
	if update.PaymentNotifications != nil {
		settings.PaymentNotifications = *update.PaymentNotifications
	}
	if update.SecurityAlerts != nil {
		settings.SecurityAlerts = *update.SecurityAlerts
	}
	if update.SessionTimeoutMin != nil && *update.SessionTimeoutMin > 0 {
		settings.SessionTimeoutMin = *update.SessionTimeoutMin
	}

	s.log.Info().Str("user_id", userID).Msg("security settings updated")
	return settings, nil
}

func (s *SecurityService) Devices(ctx context.Context, userID string) ([]*domain.TrustedDevice, error) {
	return s.devices.ListByUser(ctx, userID)
}

func (s *SecurityService) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	if err := s.devices.Revoke(ctx, userID, deviceID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("device_id", deviceID).Msg("device trust revoked")
	return nil
}
