package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dombarter/solar-api/internal/api/handler"
	"github.com/dombarter/solar-api/internal/api/middleware"
	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
	"github.com/dombarter/solar-api/internal/core/service"
	"github.com/dombarter/solar-api/internal/infrastructure/config"
)

// Deps carries everything the router needs. DB and Redis are only used by
// the readiness probe and may be nil (tests run without either).
type Deps struct {
	Config   *config.Config
	Users    ports.UserRepository
	Attempts ports.LoginAttempts // nil disables login lockout
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORS.Origin},
		AllowCredentials: true,
	}))
	// Request metrics live in a per-router registry so building several
	// routers (tests) never double-registers collectors; /metrics exposes
	// both that registry and the default one holding the auth counters.
	promRegistry := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "solar",
		Registerer: promRegistry,
	}))

	// --- Dependencies ---
	tokens := service.NewTokenService(cfg.JWT.Key, cfg.JWT.Issuer, cfg.JWT.Audience)
	policy := service.PasswordPolicy{
		MinLength:              cfg.Password.MinLength,
		RequireDigit:           cfg.Password.RequireDigit,
		RequireLowercase:       cfg.Password.RequireLowercase,
		RequireUppercase:       cfg.Password.RequireUppercase,
		RequireNonAlphanumeric: cfg.Password.RequireNonAlphanumeric,
	}
	accounts := service.NewAccountService(deps.Users, tokens, deps.Attempts, policy, cfg.JWT.TTL)

	accountHandler := handler.NewAccountHandler(accounts, handler.CookieConfig{
		Name: cfg.JWT.CookieName,
		TTL:  cfg.JWT.TTL,
	})
	moonHandler := handler.NewMoonHandler(accounts)
	authMiddleware := middleware.Auth(tokens, cfg.JWT.CookieName)

	// --- Account routes (anonymous) ---
	e.POST("/user/register", accountHandler.Register)
	e.POST("/user/login", accountHandler.Login)
	e.POST("/user/logout", accountHandler.Logout)

	// --- Protected moon routes ---
	moons := e.Group("/moons", authMiddleware)
	moons.GET("/one", moonHandler.One, middleware.RBAC(domain.RoleUser))
	moons.GET("/two", moonHandler.Two, middleware.RBAC(domain.RoleAdmin))
	moons.GET("/user", moonHandler.User, middleware.RBAC(domain.RoleAdmin, domain.RoleUser))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{promRegistry, prometheus.DefaultGatherer},
	}))

	return e
}
