package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ordersapp "github.com/shopsync/backend/internal/application/orders"
	syncapp "github.com/shopsync/backend/internal/application/sync"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/cache"
	"github.com/shopsync/backend/internal/infrastructure/config"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
	"github.com/shopsync/backend/internal/interfaces/http/handler"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
	"github.com/shopsync/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("shop", cfg.Shopify.ShopDomain),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB, log)
	sessionRepo := persistence.NewGormSessionRepository(db.DB, log)

	// Webhook dedupe store (memory or redis, per config)
	dedupeStore, err := cache.NewIdempotencyStoreFactory(
		cfg.Webhook, cfg.Redis, cache.WithLogger(log),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create webhook dedupe store", zap.Error(err))
	}
	defer func() {
		if err := dedupeStore.Close(); err != nil {
			log.Error("Error closing dedupe store", zap.Error(err))
		}
	}()

	// Shopify Admin API client for remote tag mutations
	shopifyCfg := shopify.NewConfig(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken, cfg.Shopify.APISecret)
	shopifyCfg.APIVersion = cfg.Shopify.APIVersion
	shopifyCfg.TimeoutSeconds = cfg.Shopify.TimeoutSeconds

	adminClient, err := shopify.NewAdminClient(shopifyCfg)
	if err != nil {
		log.Fatal("Failed to create Shopify Admin client", zap.Error(err))
	}

	// Initialize application services
	webhookService := syncapp.NewWebhookService(syncapp.WebhookServiceConfig{
		Orders:   orderRepo,
		Sessions: sessionRepo,
		Dedupe:   dedupeStore,
		DedupeCfg: shared.IdempotencyConfig{
			TTL:     cfg.Webhook.DedupeTTL,
			Enabled: cfg.Webhook.DedupeEnable,
		},
		Logger: log,
	})
	orderService := ordersapp.NewService(ordersapp.ServiceConfig{
		Orders: orderRepo,
		Tags:   adminClient,
		Logger: log,
	})

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(db)
	webhookHandler := handler.NewWebhookHandler(webhookService, shopifyCfg, cfg.Webhook.MaxBodySize, log)
	orderHandler := handler.NewOrderHandler(orderService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine := router.Setup(router.Config{
		Logger:    log,
		CORS:      corsConfig,
		Security:  middleware.DefaultSecurityConfig(),
		BodyLimit: cfg.HTTP.MaxBodySize,
		SessionToken: middleware.SessionTokenConfig{
			APISecret:  cfg.Shopify.APISecret,
			APIKey:     cfg.Shopify.APIKey,
			ShopDomain: cfg.Shopify.ShopDomain,
			Logger:     log,
		},
		System:  systemHandler,
		Webhook: webhookHandler,
		Orders:  orderHandler,
	})

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
