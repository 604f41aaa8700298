package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/api"
	"github.com/securebank/portal-api/internal/infrastructure/config"
	mongodb "github.com/securebank/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/securebank/portal-api/internal/infrastructure/db/redis"
	"github.com/securebank/portal-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, generatedSecrets, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{Level: "info"})
		fallback.Fatal().Err(err).Msg("configuration invalid")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "portal-api",
		Pretty:  !cfg.IsProduction(),
	})
	if generatedSecrets {
		log.Warn().Msg("signing secrets generated for this process; sessions will not survive a restart")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	var rdb *goredis.Client
	if cfg.SessionBackend == "redis" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
	}

	app := api.New(api.Dependencies{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Logger: log,
	})

	for _, ensure := range []func(context.Context) error{
		app.Users.EnsureIndexes,
		app.Payments.EnsureIndexes,
		app.Audit.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	app.Dispatcher.Start(ctx)
	go runSweeper(ctx, app.Sweepers, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := app.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
}

// runSweeper periodically clears expired lockouts, challenges, and idle
// sessions from the in-memory stores.
func runSweeper(ctx context.Context, sweepers []api.Sweeper, log zerolog.Logger) {
	if len(sweepers) == 0 {
		return
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range sweepers {
				if err := s.Sweep(ctx); err != nil {
					log.Warn().Err(err).Msg("store sweep failed")
				}
			}
		}
	}
}
