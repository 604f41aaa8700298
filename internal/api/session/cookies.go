// Package session centralises the cookie contract shared by the auth handler
// and the middleware: three cookies set and cleared with identical attributes,
// so a logout or forced termination actually removes them.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/core/ports"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// CookieConfig carries the attributes applied to every session cookie.
type CookieConfig struct {
	// CSRFName is the CSRF cookie name; unlike the token cookies it is
	// readable by the frontend (double-submit pattern).
	CSRFName   string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Set writes the access, refresh, and CSRF cookies for a fresh session.
func (cfg CookieConfig) Set(c echo.Context, tokens *ports.SessionTokens) {
	c.SetCookie(cfg.cookie(AccessCookie, tokens.AccessToken, true, cfg.AccessTTL))
	c.SetCookie(cfg.cookie(RefreshCookie, tokens.RefreshToken, true, cfg.RefreshTTL))
	c.SetCookie(cfg.cookie(cfg.CSRFName, tokens.CSRFToken, false, cfg.AccessTTL))
}

// Clear expires all three cookies. Attributes must match Set or browsers keep
// the originals.
func (cfg CookieConfig) Clear(c echo.Context) {
	c.SetCookie(cfg.expired(AccessCookie, true))
	c.SetCookie(cfg.expired(RefreshCookie, true))
	c.SetCookie(cfg.expired(cfg.CSRFName, false))
}

func (cfg CookieConfig) cookie(name, value string, httpOnly bool, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: httpOnly,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (cfg CookieConfig) expired(name string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
