package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret     string `env:"JWT_SECRET"`
	RefreshSecret string `env:"REFRESH_SECRET"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	TempTokenTTL    time.Duration `env:"TEMP_TOKEN_TTL,    default=10m"`

	CSRFCookieName string `env:"CSRF_COOKIE_NAME, default=csrf_token"`
	BcryptCost     int    `env:"BCRYPT_COST,      default=12"`

	// SessionBackend selects where lockouts, 2FA challenges and session
	// activity live: "memory" or "redis".
	SessionBackend string `env:"SESSION_BACKEND, default=memory"`
	AuditWorkers   int    `env:"AUDIT_WORKERS,   default=4"`

	FrontendOrigin string `env:"FRONTEND_ORIGIN, default=https://localhost:5173"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=secure_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig and
// validates it. In production missing signing secrets refuse startup; in
// development they are generated per process, which invalidates all tokens on
// restart.
func Load(ctx context.Context) (*Config, bool, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, false, fmt.Errorf("config: %w", err)
	}

	generated := false
	if cfg.JWTSecret == "" || cfg.RefreshSecret == "" {
		if cfg.IsProduction() {
			return nil, false, errors.New("config: JWT_SECRET and REFRESH_SECRET are required in production")
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = randomSecret()
		}
		if cfg.RefreshSecret == "" {
			cfg.RefreshSecret = randomSecret()
		}
		generated = true
	}

	if cfg.SessionBackend != "memory" && cfg.SessionBackend != "redis" {
		return nil, false, fmt.Errorf("config: unknown session backend %q", cfg.SessionBackend)
	}

	return &cfg, generated, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("config: generate secret: %v", err))
	}
	return hex.EncodeToString(buf)
}
