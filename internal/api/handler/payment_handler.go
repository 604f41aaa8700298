package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/metrics"
	"github.com/securebank/portal-api/internal/core/ports"
)

// PaymentHandler owns the customer-facing payment endpoints. Staff review
// endpoints live on EmployeeHandler.
type PaymentHandler struct {
	payments ports.PaymentService
}

func NewPaymentHandler(payments ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentRequest struct {
	PayeeName    string  `json:"payeeName" validate:"required,min=2,max=100"`
	PayeeAccount string  `json:"payeeAccount" validate:"required,account_number"`
	Swift        string  `json:"swiftCode" validate:"required,swift"`
	Currency     string  `json:"currency" validate:"required,oneof=USD EUR ZAR GBP"`
	Amount       float64 `json:"amount" validate:"required,gt=0,lte=1000000"`
	Reference    string  `json:"reference" validate:"omitempty,max=140"`
}

// Create submits a new payment in status pending.
func (h *PaymentHandler) Create(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	payment, err := h.payments.Create(c.Request().Context(), ports.CreatePaymentInput{
		UserID:       uid,
		PayeeName:    req.PayeeName,
		PayeeAccount: req.PayeeAccount,
		Swift:        req.Swift,
		Currency:     req.Currency,
		Amount:       req.Amount,
		Reference:    req.Reference,
	})
	if err != nil {
		return err
	}

	metrics.PaymentsCreatedTotal.WithLabelValues(payment.Currency).Inc()
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"data":    payment,
		"message": "Payment submitted for verification",
	})
}

// List returns the authenticated customer's payments with a summary.
func (h *PaymentHandler) List(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payments, summary, err := h.payments.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"payments": payments,
			"count":    len(payments),
			"summary":  summary,
		},
	})
}

// Get returns one payment, only when owned by the authenticated customer.
func (h *PaymentHandler) Get(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.payments.GetForUser(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    payment,
	})
}
