package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/service"
)

// Context keys populated by Auth for downstream middleware and handlers.
const (
	CtxUserID        = "uid"
	CtxAccountNumber = "account_number"
	CtxRole          = "role"
)

// Auth validates the access-token cookie and injects the session claims into
// context. Tokens arrive only via HttpOnly cookie; there is no Authorization
// header fallback.
func Auth(tokens *service.TokenIssuer, cookies session.CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.AccessCookie)
			if err != nil || cookie.Value == "" {
				return unauthorized(c, "Authentication required")
			}

			claims, err := tokens.VerifyAccess(cookie.Value)
			if err != nil {
				cookies.Clear(c)
				if errors.Is(err, domain.ErrTokenExpired) {
					return unauthorized(c, "Session expired")
				}
				return unauthorized(c, "Invalid session")
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxAccountNumber, claims.AccountNumber)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"message": msg,
		"action":  "redirect_to_login",
	})
}
