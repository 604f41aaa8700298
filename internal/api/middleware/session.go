package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/api/metrics"
	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
	"github.com/securebank/portal-api/internal/core/service"
)

const (
	idleTimeout    = 15 * time.Minute
	rapidInterval  = time.Second
	rapidThreshold = 10
)

// criticalPrefixes are the sensitive actions that get a fresh session issued
// on success, capping the lifetime of any stolen token.
var criticalPrefixes = []string{
	"/v1/payments",
	"/v1/auth/2fa-setup",
}

// SessionGuard watches per-user session activity after authentication. It
// terminates sessions on idle timeout and IP change, throttles rapid request
// bursts, logs user-agent drift without blocking, and rotates session cookies
// on critical actions. Activity is keyed by user id so a hijacked token used
// from a new address is compared against the session on record.
type SessionGuard struct {
	store   ports.SessionStore
	tokens  *service.TokenIssuer
	cookies session.CookieConfig
	audit   ports.AuditRecorder
	devices ports.DeviceRegistry
	log     zerolog.Logger
	now     func() time.Time
}

func NewSessionGuard(store ports.SessionStore, tokens *service.TokenIssuer, cookies session.CookieConfig, audit ports.AuditRecorder, devices ports.DeviceRegistry, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{
		store:   store,
		tokens:  tokens,
		cookies: cookies,
		audit:   audit,
		devices: devices,
		log:     log,
		now:     time.Now,
	}
}

func (g *SessionGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get(CtxUserID).(string)
			if uid == "" {
				return next(c)
			}

			ip := c.RealIP()
			ua := c.Request().UserAgent()
			now := g.now()

			rec, err := g.store.Get(c.Request().Context(), uid)
			if err != nil {
				g.log.Warn().Err(err).Str("user_id", uid).Msg("session store read failed")
			}

			if rec != nil {
				if now.Sub(rec.LastSeen) > idleTimeout {
					return g.terminate(c, uid, "idle_timeout", http.StatusUnauthorized, "Session expired due to inactivity")
				}

				if rec.IP != ip {
					g.log.Warn().
						Str("user_id", uid).
						Str("session_ip", rec.IP).
						Str("request_ip", ip).
						Msg("session ip changed")
					g.recordSuspicious(uid, ip, ua, "Session IP address changed")
					return g.terminate(c, uid, "ip_change", http.StatusUnauthorized, "Suspicious activity detected. Please log in again.")
				}

				if rec.UserAgent != ua {
					// Drift happens on browser updates; log it, do not block.
					g.log.Warn().Str("user_id", uid).Msg("session user-agent changed")
					g.recordEvent(uid, ip, ua, domain.EventSuspiciousAccess, "Session user-agent changed", domain.RiskMedium)
				}

				if now.Sub(rec.LastSeen) < rapidInterval {
					n, err := g.store.RecordRapid(c.Request().Context(), uid)
					if err != nil {
						g.log.Warn().Err(err).Str("user_id", uid).Msg("rapid counter failed")
					}
					if n > rapidThreshold {
						g.recordSuspicious(uid, ip, ua, "Rapid request burst")
						return g.terminate(c, uid, "rapid_requests", http.StatusTooManyRequests, "Too many requests. Please slow down.")
					}
				}
			}

			if err := g.store.Put(c.Request().Context(), uid, ports.SessionActivity{
				UserID:    uid,
				IP:        ip,
				UserAgent: ua,
				LastSeen:  now,
			}); err != nil {
				g.log.Warn().Err(err).Str("user_id", uid).Msg("session store write failed")
			}

			if g.devices != nil {
				if err := g.devices.Observe(c.Request().Context(), uid, ua, ip); err != nil {
					g.log.Warn().Err(err).Str("user_id", uid).Msg("device observation failed")
				}
			}

			if g.isCritical(c) {
				g.rotateSession(c)
			}

			return next(c)
		}
	}
}

func (g *SessionGuard) terminate(c echo.Context, uid, reason string, code int, msg string) error {
	if err := g.store.Delete(c.Request().Context(), uid); err != nil {
		g.log.Warn().Err(err).Str("user_id", uid).Msg("session delete failed")
	}
	g.cookies.Clear(c)
	metrics.SessionAnomaliesTotal.WithLabelValues(reason).Inc()
	return c.JSON(code, map[string]string{
		"message": msg,
		"action":  "redirect_to_login",
	})
}

// rotateSession reissues the session cookies so the credentials used before a
// critical action stop working afterwards.
func (g *SessionGuard) rotateSession(c echo.Context) {
	user := &domain.User{ID: c.Get(CtxUserID).(string)}
	user.AccountNumber, _ = c.Get(CtxAccountNumber).(string)
	user.Role, _ = c.Get(CtxRole).(string)

	access, err := g.tokens.AccessToken(user)
	if err != nil {
		g.log.Error().Err(err).Msg("session rotation failed")
		return
	}
	refresh, err := g.tokens.RefreshToken(user)
	if err != nil {
		g.log.Error().Err(err).Msg("session rotation failed")
		return
	}

	g.cookies.Set(c, &ports.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		CSRFToken:    uuid.NewString(),
	})
}

func (g *SessionGuard) isCritical(c echo.Context) bool {
	if c.Request().Method != http.MethodPost {
		return false
	}
	path := c.Request().URL.Path
	for _, prefix := range criticalPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *SessionGuard) recordSuspicious(uid, ip, ua, description string) {
	g.recordEvent(uid, ip, ua, domain.EventSuspiciousAccess, description, domain.RiskHigh)
}

func (g *SessionGuard) recordEvent(uid, ip, ua, eventType, description, risk string) {
	if g.audit == nil {
		return
	}
	g.audit.Enqueue(ports.AuditEventInput{
		UserID:      uid,
		EventType:   eventType,
		Description: description,
		IPAddress:   ip,
		UserAgent:   ua,
		RiskLevel:   risk,
		Timestamp:   g.now().UTC(),
	})
}
