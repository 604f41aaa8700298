package domain

import "time"

// PaymentStatus represents the lifecycle state of an international payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusVerified PaymentStatus = "verified"
	StatusSent     PaymentStatus = "sent"
	StatusDenied   PaymentStatus = "denied"
)

// MaxPaymentAmount is the upper bound accepted for a single transfer.
const MaxPaymentAmount = 1_000_000

// Currencies accepted for international transfers.
var AllowedCurrencies = []string{"USD", "EUR", "ZAR", "GBP"}

// validTransitions defines the allowed state machine transitions.
// A payment in "sent" or "denied" is immutable.
var validTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:  {StatusVerified, StatusDenied},
	StatusVerified: {StatusSent},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequiredPredecessor returns the status a payment must currently hold for a
// transition into s to be legal, and false when s is never a transition target.
func (s PaymentStatus) RequiredPredecessor() (PaymentStatus, bool) {
	for from, targets := range validTransitions {
		for _, t := range targets {
			if t == s {
				return from, true
			}
		}
	}
	return "", false
}

// Payment is a customer's funds-transfer request awaiting the approval workflow.
// PayeeAccount is sensitive and never serialised to customers or list views.
type Payment struct {
	ID           string        `json:"id"`
	UserID       string        `json:"-"`
	PayeeName    string        `json:"payeeName"`
	PayeeAccount string        `json:"-"`
	Swift        string        `json:"swift"`
	Currency     string        `json:"currency"`
	Amount       float64       `json:"amount"`
	Reference    string        `json:"reference,omitempty"`
	Status       PaymentStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
