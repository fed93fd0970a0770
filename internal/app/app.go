package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentgen_backend/internal/auth"
	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/config"
	"contentgen_backend/internal/email"
	"contentgen_backend/internal/generator"
	"contentgen_backend/internal/handlers"
	"contentgen_backend/internal/idempotency"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/metrics"
	"contentgen_backend/internal/middleware"
	"contentgen_backend/internal/models"
	"contentgen_backend/internal/repositories"
	"contentgen_backend/internal/routes"
	"contentgen_backend/internal/services"
	"contentgen_backend/internal/validator"
	"contentgen_backend/internal/workers"
	"contentgen_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// Dependencies - внешние клиенты, которые собираются до роутера.
type Dependencies struct {
	Tokens    *auth.TokenManager
	Gateway   billing.Gateway
	Generator services.ContentGenerator
	Events    idempotency.Store
	Email     email.Provider
	Metrics   *metrics.Metrics
}

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.Debug = cfg.IsDevelopment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := gormDB.AutoMigrate(&models.User{}, &models.Content{}, &models.AnalyticsEvent{}); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
		logger.Info("Database migrated")
	}

	deps, err := BuildDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}

	if err := seedFirstUser(gormDB, cfg, deps.Tokens); err != nil {
		logger.Fatal("Failed to seed first user", "error", err)
	}

	ginRouter, container := SetupRouter(cfg, gormDB, deps)

	worker := workers.NewSubscriptionWorker(gormDB, repositories.NewUserRepository(), deps.Metrics, cfg.Workers.SubscriptionStatsSpec)
	if err := worker.Start(ctx); err != nil {
		logger.Fatal("Failed to start subscription worker", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	worker.Stop()
	container.NotificationService.Wait()

	if err := deps.Events.Close(); err != nil {
		logger.Warn("Failed to close idempotency store", "error", err)
	}
	if err := deps.Email.Close(); err != nil {
		logger.Warn("Failed to close email provider", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
	logger.Info("Server stopped")
}

// BuildDependencies создает клиентов Stripe, OpenAI, Redis и почты.
// Без REDIS_URL дедупликация webhook-событий отключена.
// Без SMTP письма только пишутся в лог.
func BuildDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var events idempotency.Store = idempotency.NoopStore{}
	if cfg.Redis.URL != "" {
		store, err := idempotency.NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.WebhookTTL())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		events = store
		logger.Info("Redis connected", "prefix", cfg.Redis.KeyPrefix)
	} else {
		logger.Warn("REDIS_URL is not set. Webhook deduplication is disabled.")
	}

	mailer, err := newEmailProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set. Generation requests will fail.")
	}
	if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
		logger.Warn("Stripe keys are not set. Billing requests will fail.")
	}

	return &Dependencies{
		Tokens:    auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute),
		Gateway:   billing.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
		Generator: generator.NewDispatcher(generator.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), cfg.OpenAI.Model),
		Events:    events,
		Email:     mailer,
		Metrics:   metrics.NewMetrics(registry),
	}, nil
}

func newEmailProvider(cfg *config.Config) (email.Provider, error) {
	renderer, err := email.NewDefaultTemplateManager(cfg.Email.TemplatesDir)
	if err != nil {
		return nil, err
	}

	smtpCfg := email.DefaultConfig()
	smtpCfg.Host = cfg.Email.SMTPHost
	smtpCfg.Port = cfg.Email.SMTPPort
	smtpCfg.Username = cfg.Email.SMTPUsername
	smtpCfg.Password = cfg.Email.SMTPPassword
	smtpCfg.FromEmail = cfg.Email.FromEmail
	if cfg.Email.FromName != "" {
		smtpCfg.FromName = cfg.Email.FromName
	}

	if !smtpCfg.Enabled() {
		logger.Warn("SMTP is not configured. Emails are written to the log.")
		return email.NewLogProvider(renderer), nil
	}

	provider := email.NewSMTPProvider(smtpCfg, renderer)
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return provider, nil
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, deps *Dependencies) (*gin.Engine, *services.ServiceContainer) {
	// 1. Сервисы
	serviceContainer := initializeServices(cfg, deps)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(serviceContainer, deps, gormDB)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB, deps.Metrics)

	// 4. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, deps.Metrics, cfg.IsDevelopment())

	return ginRouter, serviceContainer
}

func initializeServices(cfg *config.Config, deps *Dependencies) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	contentRepo := repositories.NewContentRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()

	notificationService := services.NewNotificationService(deps.Email, cfg.Server.ClientURL)
	contentService := services.NewContentService(userRepo, contentRepo, analyticsRepo, deps.Generator, deps.Metrics)
	subscriptionService := services.NewSubscriptionService(
		userRepo,
		analyticsRepo,
		deps.Gateway,
		deps.Events,
		notificationService,
		deps.Metrics,
		cfg.Server.ClientURL,
	)

	return &services.ServiceContainer{
		ContentService:      contentService,
		SubscriptionService: subscriptionService,
		NotificationService: notificationService,
		EmailService:        deps.Email,
	}
}

func initializeHandlers(services *services.ServiceContainer, deps *Dependencies, gormDB *gorm.DB) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator, middleware.AuthMiddleware(deps.Tokens))

	return &handlers.AppHandlers{
		ContentHandler:      handlers.NewContentHandler(baseHandler, services.ContentService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		HealthHandler:       handlers.NewHealthHandler(gormDB),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, m *metrics.Metrics) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(m.GinMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.ClientURL))
	router.Use(middleware.DBMiddleware(db))
	return router
}
