package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/core/ports"
)

// SecurityHandler owns the customer security surface: the audit trail,
// security settings, and trusted devices.
type SecurityHandler struct {
	security ports.SecurityService
}

func NewSecurityHandler(security ports.SecurityService) *SecurityHandler {
	return &SecurityHandler{security: security}
}

// Events returns the user's security audit trail with a risk summary.
func (h *SecurityHandler) Events(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	events, summary, err := h.security.Events(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"events":  events,
			"summary": summary,
		},
	})
}

// Settings returns the user's security configuration.
func (h *SecurityHandler) Settings(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	settings, err := h.security.Settings(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    settings,
	})
}

type updateSettingsRequest struct {
	LoginNotifications   *bool `json:"loginNotifications"`
	PaymentNotifications *bool `json:"paymentNotifications"`
	SecurityAlerts       *bool `json:"securityAlerts"`
	SessionTimeoutMin    *int  `json:"sessionTimeout" validate:"omitempty,min=5,max=60"`
}

// UpdateSettings merges the provided toggles into the user's settings.
func (h *SecurityHandler) UpdateSettings(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	settings, err := h.security.UpdateSettings(c.Request().Context(), uid, ports.SecuritySettingsUpdate{
		LoginNotifications:   req.LoginNotifications,
		PaymentNotifications: req.PaymentNotifications,
		SecurityAlerts:       req.SecurityAlerts,
		SessionTimeoutMin:    req.SessionTimeoutMin,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    settings,
		"message": "Security settings updated",
	})
}

// Devices lists the user's trusted devices.
func (h *SecurityHandler) Devices(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	devices, err := h.security.Devices(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"devices": devices,
			"count":   len(devices),
		},
	})
}

// RevokeDevice withdraws trust from one device.
func (h *SecurityHandler) RevokeDevice(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.security.RevokeDevice(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Device trust revoked",
	})
}
