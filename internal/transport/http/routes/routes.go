package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/infra/config"
	"github.com/nverdi/social-app-backend/internal/transport/http/handlers"
	"github.com/nverdi/social-app-backend/internal/transport/http/middleware"
	"github.com/nverdi/social-app-backend/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on. Nil entries
// skip their routes, which keeps smoke tests free of backing stores.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
	Contacts      *usecase.ContactService
	Content       *usecase.ContentService
}

// Dependencies carries everything Register needs to assemble the engine.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register builds the Gin engine: base middleware chain, health and
// metrics endpoints, then the versioned API groups.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	registerHealth(r, deps)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		if deps.Services.Auth != nil {
			authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Config.JWT.AccessTokenTTL)
			authHandler.RegisterRoutes(api.Group("/auth"),
				throttleFor(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, time.Minute)...)
		}

		if deps.Services.Registration != nil {
			registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
			registrationHandler.RegisterRoutes(api.Group("/registration"))
		}

		if deps.Services.PasswordReset != nil {
			passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)
			passwordHandler.RegisterRoutes(api.Group("/password/reset"),
				throttleFor(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, time.Hour)...)
		}

		// The guarded surfaces also need the auth service for their
		// middleware, so they are skipped without it.
		if deps.Services.Contacts != nil && deps.Services.Auth != nil {
			contactGroup := api.Group("/contact")
			contactGroup.Use(middleware.RequireAuth(deps.Services.Auth))
			handlers.NewContactHandler(deps.Services.Contacts).RegisterRoutes(contactGroup)
		}

		if deps.Services.Content != nil {
			contentHandler := handlers.NewContentHandler(deps.Services.Content)
			contentHandler.RegisterPublicRoutes(api.Group("/content"))

			if deps.Services.Auth != nil {
				adminGroup := api.Group("/admin/content")
				adminGroup.Use(middleware.RequireAuth(deps.Services.Auth), middleware.RequireRole("admin"))
				contentHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	return r
}

func registerHealth(r *gin.Engine, deps Dependencies) {
	opts := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		opts = append(opts, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		opts = append(opts, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(opts...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
}

// throttleFor returns the rate-limit middleware for an endpoint, or
// nothing when limiting is unconfigured.
func throttleFor(deps Dependencies, name string, limit int, fallbackWindow time.Duration) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = fallbackWindow
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	})}
}
