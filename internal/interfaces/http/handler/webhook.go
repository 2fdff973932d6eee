package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopsync/backend/internal/application/sync"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Webhook headers set by the platform on every delivery
const (
	HeaderWebhookTopic     = "X-Shopify-Topic"
	HeaderWebhookShop      = "X-Shopify-Shop-Domain"
	HeaderWebhookID        = "X-Shopify-Webhook-Id"
	HeaderWebhookSignature = "X-Shopify-Hmac-Sha256"
)

// defaultWebhookBodySize bounds the raw body read when config carries no limit
const defaultWebhookBodySize = 1 << 20

// WebhookHandler receives webhook deliveries from the platform. These
// endpoints authenticate via HMAC signature, not session tokens.
type WebhookHandler struct {
	BaseHandler
	service     *sync.WebhookService
	config      *shopify.Config
	maxBodySize int64
	logger      *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service *sync.WebhookService, cfg *shopify.Config, maxBodySize int64, logger *zap.Logger) *WebhookHandler {
	if maxBodySize <= 0 {
		maxBodySize = defaultWebhookBodySize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		service:     service,
		config:      cfg,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// HandleWebhook processes one webhook delivery. The raw body is read before
// anything else because signature verification runs over the exact bytes on
// the wire. A verified, successfully processed delivery acknowledges with an
// empty 200 so the platform stops redelivering.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodySize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if int64(len(body)) > h.maxBodySize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Payload too large")
		return
	}

	signature := c.GetHeader(HeaderWebhookSignature)
	if !h.config.VerifyWebhookHMAC(body, signature) {
		h.logger.Warn("Webhook signature verification failed",
			zap.String("shop", c.GetHeader(HeaderWebhookShop)),
			zap.String("topic", c.GetHeader(HeaderWebhookTopic)))
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
		return
	}

	req := sync.WebhookRequest{
		Topic:     sync.ParseTopic(c.GetHeader(HeaderWebhookTopic)),
		Shop:      c.GetHeader(HeaderWebhookShop),
		WebhookID: c.GetHeader(HeaderWebhookID),
		Payload:   body,
	}

	if _, err := h.service.Dispatch(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
