package ports

import (
	"context"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
)

// CreatePaymentInput carries all data needed to submit a new payment.
type CreatePaymentInput struct {
	UserID       string
	PayeeName    string
	PayeeAccount string
	Swift        string
	Currency     string
	Amount       float64
	Reference    string
}

// PaymentSummary aggregates a payment list for dashboard views.
type PaymentSummary struct {
	TotalPayments int     `json:"totalPayments"`
	TotalAmount   float64 `json:"totalAmount"`
	PendingCount  int     `json:"pendingCount"`
	VerifiedCount int     `json:"verifiedCount"`
	SentCount     int     `json:"sentCount"`
	DeniedCount   int     `json:"deniedCount"`
}

// CustomerInfo is the payment owner as shown to reviewing staff.
type CustomerInfo struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
	Role          string `json:"role"`
}

// ReviewItem is a payment joined with its owner for the employee review queue.
// The payee account stays redacted even for staff.
type ReviewItem struct {
	Payment  *domain.Payment `json:"payment"`
	Customer *CustomerInfo   `json:"customer"`
}

// TransitionResult is returned after a successful status transition.
type TransitionResult struct {
	Payment *domain.Payment
	ActorID string
	ActedAt time.Time
}

// PaymentStats is the employee dashboard overview.
type PaymentStats struct {
	TotalPayments    int64   `json:"totalPayments"`
	PendingPayments  int64   `json:"pendingPayments"`
	VerifiedPayments int64   `json:"verifiedPayments"`
	SentPayments     int64   `json:"sentPayments"`
	TotalAmount      float64 `json:"totalAmount"`
	PendingAmount    float64 `json:"pendingAmount"`
	Today            int64   `json:"today"`
	ThisWeek         int64   `json:"thisWeek"`
	ThisMonth        int64   `json:"thisMonth"`
}

// PaymentService defines use-case operations over payments.
type PaymentService interface {
	// Create submits a new payment in status pending, owned by input.UserID.
	Create(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error)
	// ListForUser returns the owner's payments plus a summary.
	ListForUser(ctx context.Context, userID string) ([]*domain.Payment, *PaymentSummary, error)
	// GetForUser returns a single payment when owned by userID.
	GetForUser(ctx context.Context, id, userID string) (*domain.Payment, error)

	// Transition moves a payment into target, enforcing the state machine.
	// Role checks are the caller's responsibility.
	Transition(ctx context.Context, paymentID string, target domain.PaymentStatus, actorID string) (*TransitionResult, error)

	// Review queues for employees.
	ListAll(ctx context.Context) ([]*ReviewItem, *PaymentSummary, error)
	ListPending(ctx context.Context) ([]*ReviewItem, error)
	History(ctx context.Context) ([]*ReviewItem, *PaymentSummary, error)
	Stats(ctx context.Context) (*PaymentStats, error)
}
