package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/securebank/portal-api/internal/api/handler"
	"github.com/securebank/portal-api/internal/api/middleware"
	"github.com/securebank/portal-api/internal/api/session"
	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
	"github.com/securebank/portal-api/internal/core/service"
	"github.com/securebank/portal-api/internal/infrastructure/config"
	mongodb "github.com/securebank/portal-api/internal/infrastructure/db/mongo"
	redisstore "github.com/securebank/portal-api/internal/infrastructure/db/redis"
	"github.com/securebank/portal-api/internal/infrastructure/memory"
	"github.com/securebank/portal-api/internal/infrastructure/notify"
	"github.com/securebank/portal-api/internal/infrastructure/queue"
)

// Sweeper is implemented by the ephemeral stores whose expired records need a
// periodic cleanup pass.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Dependencies are the externally-owned resources the router assembles the
// application from. Redis is nil when the memory session backend is selected.
type Dependencies struct {
	Config *config.Config
	DB     *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// App is the assembled application: the HTTP server plus the background pieces
// main has to start and sweep.
type App struct {
	Echo       *echo.Echo
	Dispatcher *queue.Dispatcher
	Sweepers   []Sweeper

	Users    *mongodb.UserRepository
	Payments *mongodb.PaymentRepository
	Audit    *mongodb.AuditRepository
}

// New wires repositories, stores, services, and routes into a ready-to-start App.
func New(deps Dependencies) *App {
	cfg := deps.Config
	log := deps.Logger

	// --- Persistence ---
	users := mongodb.NewUserRepository(deps.DB)
	payments := mongodb.NewPaymentRepository(deps.DB)
	audit := mongodb.NewAuditRepository(deps.DB)
	notifications := mongodb.NewNotificationRepository(deps.DB)
	documents := mongodb.NewDocumentRepository(deps.DB)

	// --- Ephemeral stores ---
	var (
		attempts   ports.AttemptStore
		challenges ports.ChallengeStore
		sessions   ports.SessionStore
		sweepers   []Sweeper
	)
	if cfg.SessionBackend == "redis" {
		attempts = redisstore.NewAttemptStore(deps.Redis)
		challenges = redisstore.NewChallengeStore(deps.Redis)
		sessions = redisstore.NewSessionStore(deps.Redis)
	} else {
		ma := memory.NewAttemptStore()
		mc := memory.NewChallengeStore()
		ms := memory.NewSessionStore()
		attempts, challenges, sessions = ma, mc, ms
		sweepers = append(sweepers, ma, mc, ms)
	}
	devices := memory.NewDeviceRegistry()

	// --- Audit pipeline ---
	auditService := service.NewAuditService(audit, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, log)

	// --- Core services ---
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.TempTokenTTL)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)

	authService := service.NewAuthService(service.AuthDeps{
		Users:      users,
		Hasher:     hasher,
		Tokens:     tokens,
		Attempts:   attempts,
		Challenges: challenges,
		Sender:     notify.NewLogSender(log),
		Audit:      dispatcher,
		Logger:     log,
	})
	paymentService := service.NewPaymentService(payments, users, dispatcher, log)
	profileService := service.NewProfileService(users, notifications, documents, dispatcher, log)
	securityService := service.NewSecurityService(users, audit, devices, log)
	employeeService := service.NewEmployeeService(users, payments, log)

	// --- Transport ---
	cookies := session.CookieConfig{
		CSRFName:   cfg.CSRFCookieName,
		Secure:     cfg.IsProduction(),
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}

	authHandler := handler.NewAuthHandler(authService, sessions, cookies)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	employeeHandler := handler.NewEmployeeHandler(paymentService, employeeService, authService)
	profileHandler := handler.NewProfileHandler(profileService)
	securityHandler := handler.NewSecurityHandler(securityService)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	authn := middleware.Auth(tokens, cookies)
	csrf := middleware.CSRF(cfg.CSRFCookieName)
	guard := middleware.NewSessionGuard(sessions, tokens, cookies, dispatcher, devices, log).Middleware()
	staffOnly := middleware.RBAC(domain.RoleEmployee, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, middleware.CSRFHeader},
	}))
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Health and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	v1 := e.Group("/v1")

	// Credential endpoints carry a strict rate limit of their own.
	authRL := rateLimiter(rate.Every(3*time.Second), 10)
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register, authRL)
	auth.POST("/login", authHandler.Login, authRL)
	auth.POST("/verify-2fa", authHandler.VerifyTwoFA, authRL)
	auth.POST("/logout", authHandler.Logout, authn)
	auth.POST("/2fa-setup", authHandler.SetupTwoFA, authn, guard, csrf)
	auth.POST("/2fa-disable", authHandler.DisableTwoFA, authn, guard, csrf)

	payRL := rateLimiter(rate.Every(time.Second), 20)
	pay := v1.Group("/payments", authn, guard, csrf, middleware.RBAC(domain.RoleCustomer), payRL)
	pay.POST("", paymentHandler.Create)
	pay.GET("", paymentHandler.List)
	pay.GET("/:id", paymentHandler.Get)

	profile := v1.Group("/profile", authn, guard, csrf)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)
	profile.GET("/notifications", profileHandler.Notifications)
	profile.PUT("/notifications/:id/read", profileHandler.MarkNotificationRead)
	profile.GET("/documents", profileHandler.Documents)

	security := v1.Group("/security", authn, guard, csrf)
	security.GET("/events", securityHandler.Events)
	security.GET("/settings", securityHandler.Settings)
	security.PUT("/settings", securityHandler.UpdateSettings)
	security.GET("/devices", securityHandler.Devices)
	security.DELETE("/devices/:id", securityHandler.RevokeDevice)

	staff := v1.Group("/employee", authn, guard, csrf, staffOnly)
	staff.GET("/payments", employeeHandler.ListPayments)
	staff.GET("/payments/pending", employeeHandler.PendingPayments)
	staff.GET("/payments/history", employeeHandler.PaymentHistory)
	staff.GET("/payments/stats", employeeHandler.PaymentStats)
	staff.POST("/payments/:id/verify", employeeHandler.VerifyPayment)
	staff.POST("/payments/:id/send", employeeHandler.SendPayment)
	staff.POST("/payments/:id/deny", employeeHandler.DenyPayment)
	staff.GET("/users/activity", employeeHandler.UserActivity)

	admin := staff.Group("/employees", adminOnly)
	admin.GET("", employeeHandler.ListEmployees)
	admin.POST("", employeeHandler.CreateEmployee)
	admin.DELETE("/:id", employeeHandler.DeleteEmployee)

	return &App{
		Echo:       e,
		Dispatcher: dispatcher,
		Sweepers:   sweepers,
		Users:      users,
		Payments:   payments,
		Audit:      audit,
	}
}

func rateLimiter(r rate.Limit, burst int) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      r,
			Burst:     burst,
			ExpiresIn: 15 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"message": "Too many requests. Please slow down.",
			})
		},
	})
}
