package domain

import "time"

// Risk levels attached to security events.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Security event types emitted throughout the portal.
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailure     = "login_failure"
	EventAccountLocked    = "account_locked"
	EventTwoFASent        = "2fa_code_sent"
	EventTwoFAVerified    = "2fa_verified"
	EventTwoFAEnabled     = "2fa_enabled"
	EventTwoFADisabled    = "2fa_disabled"
	EventPaymentCreated   = "payment_created"
	EventPaymentVerified  = "payment_verified"
	EventPaymentSent      = "payment_sent"
	EventPaymentDenied    = "payment_denied"
	EventSuspiciousAccess = "suspicious_activity"
	EventProfileUpdated   = "profile_updated"
)

// SecurityEvent is a single entry in a user's audit trail.
type SecurityEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	UserAgent   string    `json:"userAgent"`
	RiskLevel   string    `json:"riskLevel"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notification is a message surfaced on the customer dashboard.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Document is a downloadable statement or certificate attached to an account.
type Document struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Format     string    `json:"format"`
	SizeKB     int64     `json:"sizeKb"`
	UploadedAt time.Time `json:"uploadDate"`
}

// TrustedDevice is a device known to the device-trust registry.
type TrustedDevice struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"deviceName"`
	UserAgent string    `json:"-"`
	IPAddress string    `json:"ipAddress"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Current   bool      `json:"isCurrent"`
	Trusted   bool      `json:"trusted"`
}
