package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/api/metrics"
)

// CSRFHeader is the request header the frontend copies the CSRF cookie into.
const CSRFHeader = "x-csrf-token"

// CSRF enforces the double-submit cookie pattern on every state-changing
// method. The frontend reads the non-HttpOnly CSRF cookie and echoes it in the
// x-csrf-token header; both values must be present and equal.
func CSRF(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			header := c.Request().Header.Get(CSRFHeader)
			cookie, err := c.Cookie(cookieName)
			if err != nil || header == "" ||
				subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
				metrics.CSRFRejectionsTotal.Inc()
				return c.JSON(http.StatusForbidden, map[string]string{
					"message": "Invalid CSRF token",
					"action":  "refresh_and_retry",
				})
			}

			return next(c)
		}
	}
}
