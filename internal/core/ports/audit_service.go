package ports

import (
	"context"
	"time"
)

// AuditEventInput is the DTO handed from the request path to the audit pipeline.
type AuditEventInput struct {
	UserID      string
	EventType   string
	Description string
	IPAddress   string
	UserAgent   string
	RiskLevel   string
	Timestamp   time.Time
}

// AuditRecorder enqueues an audit event without blocking the request path.
type AuditRecorder interface {
	Enqueue(event AuditEventInput)
}

// AuditService persists a single audit event.
type AuditService interface {
	Process(ctx context.Context, event AuditEventInput) error
}
