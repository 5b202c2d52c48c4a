package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dombarter/solar-api/internal/api"
	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
	"github.com/dombarter/solar-api/internal/infrastructure/config"
	"github.com/dombarter/solar-api/internal/infrastructure/db/postgres"
	redisdb "github.com/dombarter/solar-api/internal/infrastructure/db/redis"
	"github.com/dombarter/solar-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Credential store ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	users := postgres.NewUserRepository(pool)
	if err := users.EnsureRoles(ctx, domain.SeededRoles); err != nil {
		log.Fatal().Err(err).Msg("role seeding failed")
	}

	// --- Lockout store ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	var attempts ports.LoginAttempts
	if cfg.Lockout.Enabled {
		attempts = redisdb.NewLockoutStore(rdb, cfg.Lockout.MaxAttempts, cfg.Lockout.Window)
	}

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Config:   cfg,
		Users:    users,
		Attempts: attempts,
		DB:       pool,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
