package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

const (
	customerListLimit = 100
	reviewListLimit   = 200
	historyListLimit  = 500
)

// PaymentService implements payment submission and the employee approval
// workflow.
type PaymentService struct {
	payments ports.PaymentRepository
	users    ports.UserRepository
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewPaymentService(payments ports.PaymentRepository, users ports.UserRepository, audit ports.AuditRecorder, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		users:    users,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Create submits a new payment in status pending.
func (s *PaymentService) Create(ctx context.Context, input ports.CreatePaymentInput) (*domain.Payment, error) {
	if input.Amount <= 0 || input.Amount > domain.MaxPaymentAmount {
		return nil, domain.ErrInvalidAmount
	}
	if !allowedCurrency(input.Currency) {
		return nil, fmt.Errorf("%w: unsupported currency %q", domain.ErrInvalidAmount, input.Currency)
	}

	nowUTC := s.now().UTC()
	payment := &domain.Payment{
		UserID:       input.UserID,
		PayeeName:    strings.TrimSpace(input.PayeeName),
		PayeeAccount: strings.TrimSpace(input.PayeeAccount),
		Swift:        strings.ToUpper(strings.TrimSpace(input.Swift)),
		Currency:     strings.ToUpper(input.Currency),
		Amount:       input.Amount,
		Reference:    strings.TrimSpace(input.Reference),
		Status:       domain.StatusPending,
		CreatedAt:    nowUTC,
		UpdatedAt:    nowUTC,
	}

	created, err := s.payments.Create(ctx, payment)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create payment")
		return nil, err
	}

	s.recordEvent(input.UserID, domain.EventPaymentCreated,
		fmt.Sprintf("International payment of %s %.2f initiated", created.Currency, created.Amount), domain.RiskMedium)
	s.log.Info().
		Str("payment_id", created.ID).
		Str("user_id", input.UserID).
		Str("currency", created.Currency).
		Float64("amount", created.Amount).
		Msg("payment created")

	return created, nil
}

// ListForUser returns the owner's payments, newest first, with a summary.
func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]*domain.Payment, *ports.PaymentSummary, error) {
	payments, err := s.payments.ListByUser(ctx, userID, customerListLimit)
	if err != nil {
		return nil, nil, err
	}
	return payments, summarize(payments), nil
}

// GetForUser returns a payment only when owned by userID.
func (s *PaymentService) GetForUser(ctx context.Context, id, userID string) (*domain.Payment, error) {
	return s.payments.FindByIDForUser(ctx, id, userID)
}

// Transition moves a payment into target. The payment's current status must be
// the required predecessor of target; payments in sent or denied are immutable.
func (s *PaymentService) Transition(ctx context.Context, paymentID string, target domain.PaymentStatus, actorID string) (*ports.TransitionResult, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	pred, ok := target.RequiredPredecessor()
	if !ok || payment.Status != pred || !payment.Status.CanTransitionTo(target) {
		s.log.Warn().
			Str("payment_id", paymentID).
			Str("from", string(payment.Status)).
			Str("to", string(target)).
			Msg("illegal payment transition")
		return nil, fmt.Errorf("%w: payment cannot be %s, current status: %s",
			domain.ErrInvalidTransition, target, payment.Status)
	}

	updated, err := s.payments.UpdateStatus(ctx, paymentID, target)
	if err != nil {
		return nil, err
	}

	eventType := map[domain.PaymentStatus]string{
		domain.StatusVerified: domain.EventPaymentVerified,
		domain.StatusSent:     domain.EventPaymentSent,
		domain.StatusDenied:   domain.EventPaymentDenied,
	}[target]
	s.recordEvent(updated.UserID, eventType,
		fmt.Sprintf("Payment %s %s by staff", updated.ID, target), domain.RiskMedium)

	s.log.Info().
		Str("payment_id", paymentID).
		Str("status", string(target)).
		Str("actor_id", actorID).
		Msg("payment transitioned")

	return &ports.TransitionResult{Payment: updated, ActorID: actorID, ActedAt: s.now().UTC()}, nil
}

// ListAll returns every payment joined with its owner, for the review queue.
func (s *PaymentService) ListAll(ctx context.Context) ([]*ports.ReviewItem, *ports.PaymentSummary, error) {
	payments, err := s.payments.ListByStatus(ctx, nil, reviewListLimit)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.join(ctx, payments)
	if err != nil {
		return nil, nil, err
	}
	return items, summarize(payments), nil
}

// ListPending returns only payments awaiting verification.
func (s *PaymentService) ListPending(ctx context.Context) ([]*ports.ReviewItem, error) {
	payments, err := s.payments.ListByStatus(ctx, []domain.PaymentStatus{domain.StatusPending}, reviewListLimit)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, payments)
}

// History returns payments that have left the pending state.
func (s *PaymentService) History(ctx context.Context) ([]*ports.ReviewItem, *ports.PaymentSummary, error) {
	payments, err := s.payments.ListByStatus(ctx,
		[]domain.PaymentStatus{domain.StatusVerified, domain.StatusSent, domain.StatusDenied}, historyListLimit)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.join(ctx, payments)
	if err != nil {
		return nil, nil, err
	}
	return items, summarize(payments), nil
}

// Stats builds the employee dashboard overview.
func (s *PaymentService) Stats(ctx context.Context) (*ports.PaymentStats, error) {
	counts, err := s.payments.Counts(ctx)
	if err != nil {
		return nil, err
	}

	nowLocal := s.now()
	startOfDay := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, nowLocal.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(nowLocal.Weekday()))
	startOfMonth := time.Date(nowLocal.Year(), nowLocal.Month(), 1, 0, 0, 0, 0, nowLocal.Location())

	today, err := s.payments.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	week, err := s.payments.CountCreatedSince(ctx, startOfWeek)
	if err != nil {
		return nil, err
	}
	month, err := s.payments.CountCreatedSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}

	return &ports.PaymentStats{
		TotalPayments:    counts.Total,
		PendingPayments:  counts.Pending,
		VerifiedPayments: counts.Verified,
		SentPayments:     counts.Sent,
		TotalAmount:      counts.TotalAmount,
		PendingAmount:    counts.PendingAmount,
		Today:            today,
		ThisWeek:         week,
		ThisMonth:        month,
	}, nil
}

// join decorates payments with their owners for staff views. Owner lookups are
// memoised per call; a missing owner does not fail the whole listing.
func (s *PaymentService) join(ctx context.Context, payments []*domain.Payment) ([]*ports.ReviewItem, error) {
	owners := make(map[string]*ports.CustomerInfo, len(payments))
	items := make([]*ports.ReviewItem, 0, len(payments))

	for _, p := range payments {
		info, seen := owners[p.UserID]
		if !seen {
			user, err := s.users.FindByID(ctx, p.UserID)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					return nil, err
				}
				s.log.Warn().Str("payment_id", p.ID).Str("user_id", p.UserID).Msg("payment owner missing")
			} else {
				info = &ports.CustomerInfo{
					FullName:      user.FullName,
					Email:         user.Email,
					AccountNumber: user.AccountNumber,
					Role:          user.Role,
				}
			}
			owners[p.UserID] = info
		}
		items = append(items, &ports.ReviewItem{Payment: p, Customer: info})
	}
	return items, nil
}

func (s *PaymentService) recordEvent(userID, eventType, description, risk string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEventInput{
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		RiskLevel:   risk,
		Timestamp:   s.now().UTC(),
	})
}

func summarize(payments []*domain.Payment) *ports.PaymentSummary {
	summary := &ports.PaymentSummary{TotalPayments: len(payments)}
	for _, p := range payments {
		summary.TotalAmount += p.Amount
		switch p.Status {
		case domain.StatusPending:
			summary.PendingCount++
		case domain.StatusVerified:
			summary.VerifiedCount++
		case domain.StatusSent:
			summary.SentCount++
		case domain.StatusDenied:
			summary.DeniedCount++
		}
	}
	return summary
}

func allowedCurrency(currency string) bool {
	upper := strings.ToUpper(currency)
	for _, c := range domain.AllowedCurrencies {
		if c == upper {
			return true
		}
	}
	return false
}
