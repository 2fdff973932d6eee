package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/interfaces/http/handler"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Config wires handlers and middleware settings into the HTTP engine
type Config struct {
	Logger       *zap.Logger
	CORS         middleware.CORSConfig
	Security     middleware.SecurityConfig
	BodyLimit    int64
	SessionToken middleware.SessionTokenConfig

	System  *handler.SystemHandler
	Webhook *handler.WebhookHandler
	Orders  *handler.OrderHandler
}

// Setup builds the gin engine with the full middleware stack and routes.
// The webhook endpoint sits outside the session-token guard; it
// authenticates with the delivery signature instead.
func Setup(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.SecureWithConfig(cfg.Security),
	)
	if cfg.BodyLimit > 0 {
		engine.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
		engine.GET("/system/info", cfg.System.GetSystemInfo)
	}

	if cfg.Webhook != nil {
		engine.POST("/webhooks/shopify", cfg.Webhook.HandleWebhook)
	}

	if cfg.Orders != nil {
		api := engine.Group("/api/v1")
		api.Use(middleware.SessionTokenAuth(cfg.SessionToken))

		api.GET("/orders", cfg.Orders.ListOrders)
		api.GET("/orders/:order_id", cfg.Orders.GetOrder)
		api.POST("/orders/:order_id/tags", cfg.Orders.UpdateTags)
	}

	return engine
}
