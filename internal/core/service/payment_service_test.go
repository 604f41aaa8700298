package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

type stubPaymentRepo struct {
	payments map[string]*domain.Payment
	nextID   int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[string]*domain.Payment)}
}

func clonePayment(p *domain.Payment) *domain.Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPaymentRepo) Create(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	r.nextID++
	copy := clonePayment(p)
	copy.ID = "pay-" + strconv.Itoa(r.nextID)
	r.payments[copy.ID] = copy
	return clonePayment(copy), nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id string) (*domain.Payment, error) {
	if p, ok := r.payments[id]; ok {
		return clonePayment(p), nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *stubPaymentRepo) FindByIDForUser(_ context.Context, id, userID string) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *stubPaymentRepo) ListByUser(_ context.Context, userID string, limit int64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, clonePayment(p))
		}
	}
	sortNewestFirst(out)
	return capLimit(out, limit), nil
}

func (r *stubPaymentRepo) ListByStatus(_ context.Context, statuses []domain.PaymentStatus, limit int64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.payments {
		if len(statuses) == 0 {
			out = append(out, clonePayment(p))
			continue
		}
		for _, st := range statuses {
			if p.Status == st {
				out = append(out, clonePayment(p))
				break
			}
		}
	}
	sortNewestFirst(out)
	return capLimit(out, limit), nil
}

func (r *stubPaymentRepo) UpdateStatus(_ context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return clonePayment(p), nil
}

func (r *stubPaymentRepo) Counts(_ context.Context) (*ports.PaymentCounts, error) {
	counts := &ports.PaymentCounts{}
	for _, p := range r.payments {
		counts.Total++
		counts.TotalAmount += p.Amount
		switch p.Status {
		case domain.StatusPending:
			counts.Pending++
			counts.PendingAmount += p.Amount
		case domain.StatusVerified:
			counts.Verified++
		case domain.StatusSent:
			counts.Sent++
		}
	}
	return counts, nil
}

func (r *stubPaymentRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, p := range r.payments {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *stubPaymentRepo) CountByUser(_ context.Context, userID string, status domain.PaymentStatus) (int64, error) {
	var n int64
	for _, p := range r.payments {
		if p.UserID == userID && (status == "" || p.Status == status) {
			n++
		}
	}
	return n, nil
}

func sortNewestFirst(payments []*domain.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}

func capLimit(payments []*domain.Payment, limit int64) []*domain.Payment {
	if limit > 0 && int64(len(payments)) > limit {
		return payments[:limit]
	}
	return payments
}

type paymentFixture struct {
	svc      *PaymentService
	payments *stubPaymentRepo
	users    *stubUserRepo
	audit    *stubAudit
}

func newPaymentFixture() *paymentFixture {
	payments := newStubPaymentRepo()
	users := newStubUserRepo()
	audit := &stubAudit{}
	return &paymentFixture{
		svc:      NewPaymentService(payments, users, audit, zerolog.Nop()),
		payments: payments,
		users:    users,
		audit:    audit,
	}
}

func validPaymentInput(userID string) ports.CreatePaymentInput {
	return ports.CreatePaymentInput{
		UserID:       userID,
		PayeeName:    "  Acme Suppliers Ltd ",
		PayeeAccount: " 987654321 ",
		Swift:        "abcdza2l",
		Currency:     "usd",
		Amount:       1250.50,
		Reference:    " Invoice 42 ",
	}
}

func TestPaymentService_Create_Normalizes(t *testing.T) {
	f := newPaymentFixture()

	p, err := f.svc.Create(context.Background(), validPaymentInput("user-1"))
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if p.Status != domain.StatusPending {
		t.Fatalf("new payment must start pending, got %s", p.Status)
	}
	if p.PayeeName != "Acme Suppliers Ltd" || p.PayeeAccount != "987654321" || p.Reference != "Invoice 42" {
		t.Fatalf("fields not trimmed: %+v", p)
	}
	if p.Swift != "ABCDZA2L" || p.Currency != "USD" {
		t.Fatalf("swift/currency not uppercased: %s %s", p.Swift, p.Currency)
	}
}

func TestPaymentService_Create_RejectsBadAmounts(t *testing.T) {
	f := newPaymentFixture()

	for _, amount := range []float64{0, -10, domain.MaxPaymentAmount + 1} {
		input := validPaymentInput("user-1")
		input.Amount = amount
		if _, err := f.svc.Create(context.Background(), input); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestPaymentService_Create_RejectsUnknownCurrency(t *testing.T) {
	f := newPaymentFixture()

	input := validPaymentInput("user-1")
	input.Currency = "BTC"
	if _, err := f.svc.Create(context.Background(), input); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for unsupported currency, got %v", err)
	}
}

func TestPaymentService_Transition_HappyPath(t *testing.T) {
	f := newPaymentFixture()
	p, _ := f.svc.Create(context.Background(), validPaymentInput("user-1"))

	verified, err := f.svc.Transition(context.Background(), p.ID, domain.StatusVerified, "emp-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Payment.Status != domain.StatusVerified || verified.ActorID != "emp-1" {
		t.Fatalf("unexpected result: %+v", verified)
	}

	sent, err := f.svc.Transition(context.Background(), p.ID, domain.StatusSent, "emp-2")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Payment.Status != domain.StatusSent {
		t.Fatalf("unexpected status: %s", sent.Payment.Status)
	}
}

func TestPaymentService_Transition_Deny(t *testing.T) {
	f := newPaymentFixture()
	p, _ := f.svc.Create(context.Background(), validPaymentInput("user-1"))

	if _, err := f.svc.Transition(context.Background(), p.ID, domain.StatusDenied, "emp-1"); err != nil {
		t.Fatalf("deny: %v", err)
	}

	// A denied payment is immutable.
	if _, err := f.svc.Transition(context.Background(), p.ID, domain.StatusVerified, "emp-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPaymentService_Transition_Illegal(t *testing.T) {
	f := newPaymentFixture()
	p, _ := f.svc.Create(context.Background(), validPaymentInput("user-1"))

	// pending cannot be sent directly; it needs verification first.
	if _, err := f.svc.Transition(context.Background(), p.ID, domain.StatusSent, "emp-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// sent is terminal.
	_, _ = f.svc.Transition(context.Background(), p.ID, domain.StatusVerified, "emp-1")
	_, _ = f.svc.Transition(context.Background(), p.ID, domain.StatusSent, "emp-1")
	if _, err := f.svc.Transition(context.Background(), p.ID, domain.StatusDenied, "emp-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on terminal payment, got %v", err)
	}

	if _, err := f.svc.Transition(context.Background(), "missing", domain.StatusVerified, "emp-1"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentService_ListForUser_Summary(t *testing.T) {
	f := newPaymentFixture()

	for i := 0; i < 3; i++ {
		input := validPaymentInput("user-1")
		input.Amount = 100
		if _, err := f.svc.Create(context.Background(), input); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := validPaymentInput("user-2")
	if _, err := f.svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create: %v", err)
	}

	payments, summary, err := f.svc.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(payments))
	}
	if summary.TotalPayments != 3 || summary.PendingCount != 3 || summary.TotalAmount != 300 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestPaymentService_GetForUser_EnforcesOwnership(t *testing.T) {
	f := newPaymentFixture()
	p, _ := f.svc.Create(context.Background(), validPaymentInput("user-1"))

	if _, err := f.svc.GetForUser(context.Background(), p.ID, "user-2"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound for non-owner, got %v", err)
	}
	if _, err := f.svc.GetForUser(context.Background(), p.ID, "user-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
}

func TestPaymentService_ListPending_JoinsOwners(t *testing.T) {
	f := newPaymentFixture()

	owner, err := f.users.Create(context.Background(), &domain.User{
		FullName:      "Carol Customer",
		Email:         "carol@example.com",
		AccountNumber: "11112222",
		Role:          domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := f.svc.Create(context.Background(), validPaymentInput(owner.ID)); err != nil {
		t.Fatalf("create: %v", err)
	}
	// A payment whose owner record is gone still shows up, without customer info.
	if _, err := f.svc.Create(context.Background(), validPaymentInput("ghost")); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := f.svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	var withOwner, orphaned int
	for _, item := range items {
		if item.Customer != nil {
			withOwner++
			if item.Customer.FullName != "Carol Customer" || item.Customer.AccountNumber != "11112222" {
				t.Fatalf("unexpected customer info: %+v", item.Customer)
			}
		} else {
			orphaned++
		}
	}
	if withOwner != 1 || orphaned != 1 {
		t.Fatalf("expected 1 joined and 1 orphaned item, got %d/%d", withOwner, orphaned)
	}
}

func TestPaymentService_Stats(t *testing.T) {
	f := newPaymentFixture()

	p1, _ := f.svc.Create(context.Background(), validPaymentInput("user-1"))
	_, _ = f.svc.Create(context.Background(), validPaymentInput("user-1"))
	if _, err := f.svc.Transition(context.Background(), p1.ID, domain.StatusVerified, "emp-1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPayments != 2 || stats.PendingPayments != 1 || stats.VerifiedPayments != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Today != 2 || stats.ThisWeek != 2 || stats.ThisMonth != 2 {
		t.Fatalf("recency counts wrong: %+v", stats)
	}
}
