package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/core/ports"
)

// ProfileHandler owns the customer profile surface: profile data,
// notifications, and account documents.
type ProfileHandler struct {
	profile ports.ProfileService
}

func NewProfileHandler(profile ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// Get returns the authenticated user's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.profile.Get(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    user,
	})
}

type updateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// Update changes the user's name and email.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	user, err := h.profile.Update(c.Request().Context(), uid, ports.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    user,
		"message": "Profile updated",
	})
}

// Notifications returns the user's notifications plus the unread count.
func (h *ProfileHandler) Notifications(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	list, err := h.profile.Notifications(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    list,
	})
}

// MarkNotificationRead marks one notification as read.
func (h *ProfileHandler) MarkNotificationRead(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.profile.MarkNotificationRead(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Notification marked as read",
	})
}

// Documents lists the user's statements and certificates.
func (h *ProfileHandler) Documents(c echo.Context) error {
	uid, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	docs, err := h.profile.Documents(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"documents": docs,
			"count":     len(docs),
		},
	})
}
