package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/infra/config"
	"github.com/nverdi/social-app-backend/internal/infra/database"
	kafkainfra "github.com/nverdi/social-app-backend/internal/infra/kafka"
	"github.com/nverdi/social-app-backend/internal/infra/logger"
	"github.com/nverdi/social-app-backend/internal/infra/notify"
	redisinfra "github.com/nverdi/social-app-backend/internal/infra/redis"
	"github.com/nverdi/social-app-backend/internal/infra/security"
	"github.com/nverdi/social-app-backend/internal/infra/telemetry"
	postgresrepo "github.com/nverdi/social-app-backend/internal/repository/postgres"
	redisrepo "github.com/nverdi/social-app-backend/internal/repository/redis"
	"github.com/nverdi/social-app-backend/internal/transport/http/middleware"
	"github.com/nverdi/social-app-backend/internal/transport/http/routes"
	"github.com/nverdi/social-app-backend/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	sessionStore := redisrepo.NewSessionRepository(redisClient.Client(), cfg.Redis.SessionPrefix, cfg.Redis.SessionTTL)
	denylist := redisrepo.NewDenylistRepository(redisClient.Client(), cfg.Redis.DenylistPrefix)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "social:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	var eventPublisher port.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
		}
	} else {
		log.Info("kafka disabled, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	notifier := notify.NewDispatcher(
		notify.NewEmailSender(cfg.SMTP, log),
		notify.NewSMSSender(cfg.SMS, log),
	)

	passwordValidator := security.DefaultPasswordValidator()

	verificationService := usecase.NewVerificationService(
		repos.VerificationCodes,
		repos.Users,
		notifier,
		eventPublisher,
		usecase.VerificationWindows{
			Registration:      cfg.Verification.Window("registration"),
			PasswordReset:     cfg.Verification.Window("password_reset"),
			EmailVerification: cfg.Verification.Window("email_verification"),
			ChangeContact:     cfg.Verification.Window("change_email"),
		},
		log,
	).
		WithCodeLength(cfg.Verification.CodeLength).
		WithMaxAttempts(cfg.Verification.MaxAttempts).
		WithCleanupOnIssue(cfg.Verification.CleanupBeforeIssue).
		WithMetrics(metrics)

	registrationService := usecase.NewRegistrationService(sessionStore, repos.Users, verificationService, passwordValidator, log)
	passwordResetService := usecase.NewPasswordResetService(repos.Users, verificationService, rateLimitStore, eventPublisher, passwordValidator, log).
		WithRateLimit(cfg.RateLimit.WindowDuration, cfg.RateLimit.PasswordResetMaxAttempts)
	authService := usecase.NewAuthService(repos.Users, tokenManager, denylist, rateLimitStore, log).
		WithRateLimit(cfg.RateLimit.WindowDuration, cfg.RateLimit.LoginMaxAttempts)
	contactService := usecase.NewContactService(repos.Users, verificationService, log)
	contentService := usecase.NewContentService(repos.Banners, repos.FAQs)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			PasswordReset: passwordResetService,
			Contacts:      contactService,
			Content:       contentService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
