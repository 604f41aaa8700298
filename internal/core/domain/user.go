package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// User models an account holder or staff member of the portal.
type User struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	AccountNumber string    `json:"accountNumber"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	TwoFAEnabled  bool      `json:"is2FAEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
}

// IsStaff reports whether the user may act on the payment approval workflow.
func (u *User) IsStaff() bool {
	return u.Role == RoleEmployee || u.Role == RoleAdmin
}
