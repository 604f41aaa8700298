package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/metrics"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

// EmployeeHandler owns the staff portal: the payment review workflow and, for
// admins, employee account management.
type EmployeeHandler struct {
	payments  ports.PaymentService
	employees ports.EmployeeService
	auth      ports.AuthService
}

func NewEmployeeHandler(payments ports.PaymentService, employees ports.EmployeeService, auth ports.AuthService) *EmployeeHandler {
	return &EmployeeHandler{payments: payments, employees: employees, auth: auth}
}

// staffEnvelope is the response shape shared by all staff endpoints.
type staffEnvelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func envelope(data any, message string) staffEnvelope {
	return staffEnvelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// ListPayments returns every payment joined with its owner.
func (h *EmployeeHandler) ListPayments(c echo.Context) error {
	items, summary, err := h.payments.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"payments": items,
		"count":    len(items),
		"summary":  summary,
	}, ""))
}

// PendingPayments returns the verification queue (status pending).
func (h *EmployeeHandler) PendingPayments(c echo.Context) error {
	items, err := h.payments.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"payments": items,
		"count":    len(items),
	}, ""))
}

// PaymentHistory returns completed payments (sent or denied).
func (h *EmployeeHandler) PaymentHistory(c echo.Context) error {
	items, summary, err := h.payments.History(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"payments": items,
		"count":    len(items),
		"summary":  summary,
	}, ""))
}

// PaymentStats returns the dashboard overview.
func (h *EmployeeHandler) PaymentStats(c echo.Context) error {
	stats, err := h.payments.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(stats, ""))
}

// VerifyPayment moves a pending payment to verified.
func (h *EmployeeHandler) VerifyPayment(c echo.Context) error {
	return h.transition(c, domain.StatusVerified, "verified", "Payment verified and ready for submission")
}

// SendPayment submits a verified payment to the payment network.
func (h *EmployeeHandler) SendPayment(c echo.Context) error {
	return h.transition(c, domain.StatusSent, "sent", "Payment submitted to SWIFT")
}

// DenyPayment rejects a pending payment.
func (h *EmployeeHandler) DenyPayment(c echo.Context) error {
	return h.transition(c, domain.StatusDenied, "denied", "Payment denied")
}

func (h *EmployeeHandler) transition(c echo.Context, target domain.PaymentStatus, action, message string) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.payments.Transition(c.Request().Context(), c.Param("id"), target, uid)
	if err != nil {
		return err
	}

	metrics.PaymentTransitionsTotal.WithLabelValues(string(target)).Inc()
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"payment":     result.Payment,
		action + "By": result.ActorID,
		action + "At": result.ActedAt,
	}, message))
}

// UserActivity lists customers with their payment volumes.
func (h *EmployeeHandler) UserActivity(c echo.Context) error {
	activity, err := h.employees.CustomerActivity(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"users": activity,
		"count": len(activity),
	}, ""))
}

// ListEmployees returns all staff accounts (admin only).
func (h *EmployeeHandler) ListEmployees(c echo.Context) error {
	staff, err := h.employees.ListStaff(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{
		"employees": staff,
		"count":     len(staff),
	}, ""))
}

type createEmployeeRequest struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	AccountNumber string `json:"accountNumber" validate:"required,employee_id"`
	Password      string `json:"password" validate:"required"`
	Role          string `json:"role" validate:"omitempty,oneof=employee admin"`
}

// CreateEmployee registers a staff account (admin only).
func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	var req createEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	user, err := h.auth.RegisterStaff(c.Request().Context(), ports.RegisterStaffInput{
		FullName:      req.FullName,
		Email:         req.Email,
		AccountNumber: req.AccountNumber,
		Password:      req.Password,
		Role:          req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, envelope(map[string]any{
		"employee": user,
	}, "Employee account created"))
}

// DeleteEmployee removes a staff account (admin only, never self or admins).
func (h *EmployeeHandler) DeleteEmployee(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.employees.DeleteStaff(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(nil, "Employee account deleted"))
}
