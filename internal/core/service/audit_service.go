package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events to the audit
// trail. It is normally driven by the queue dispatcher, off the request path.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single security event.
func (s *auditService) Process(ctx context.Context, in ports.AuditEventInput) error {
	if in.EventType == "" {
		return fmt.Errorf("process audit event: missing event type")
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	risk := in.RiskLevel
	if risk == "" {
		risk = domain.RiskLow
	}

	event := &domain.SecurityEvent{
		UserID:      in.UserID,
		EventType:   in.EventType,
		Description: in.Description,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		RiskLevel:   risk,
		Timestamp:   ts,
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	if risk == domain.RiskHigh {
		s.log.Warn().
			Str("user_id", in.UserID).
			Str("event_type", in.EventType).
			Str("ip", in.IPAddress).
			Msg("high risk security event")
	}
	return nil
}
