package sync

import (
	"context"

	"github.com/shopsync/backend/internal/domain/order"
	"github.com/shopsync/backend/internal/domain/session"
	"github.com/shopsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Topic is a webhook topic as delivered in the X-Shopify-Topic header,
// normalized to the platform's constant form.
type Topic string

// Webhook topics this service knows about. The data-privacy topics are
// acknowledged as unhandled on purpose; the platform registers them for
// every app regardless of subscription.
const (
	TopicAppUninstalled       Topic = "APP_UNINSTALLED"
	TopicOrdersCreate         Topic = "ORDERS_CREATE"
	TopicOrdersUpdated        Topic = "ORDERS_UPDATED"
	TopicOrdersCancelled      Topic = "ORDERS_CANCELLED"
	TopicCustomersDataRequest Topic = "CUSTOMERS_DATA_REQUEST"
	TopicCustomersRedact      Topic = "CUSTOMERS_REDACT"
	TopicShopRedact           Topic = "SHOP_REDACT"
)

// WebhookRequest carries one webhook delivery through dispatch
type WebhookRequest struct {
	Topic     Topic
	Shop      string
	WebhookID string // platform delivery id, empty when the header is absent
	Payload   []byte
}

// WebhookResult describes the outcome of processing a delivery
type WebhookResult struct {
	Topic     Topic  `json:"topic"`
	OrderID   string `json:"order_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// WebhookService dispatches webhook deliveries to their topic handlers.
// Processing is idempotent end to end: the upsert keyed by the external
// order id is the correctness backstop, the dedupe store only saves work
// on at-least-once redeliveries.
type WebhookService struct {
	orders    order.Repository
	sessions  session.Repository
	dedupe    shared.IdempotencyStore
	dedupeCfg shared.IdempotencyConfig
	logger    *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	Orders    order.Repository
	Sessions  session.Repository
	Dedupe    shared.IdempotencyStore
	DedupeCfg shared.IdempotencyConfig
	Logger    *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		orders:    cfg.Orders,
		sessions:  cfg.Sessions,
		dedupe:    cfg.Dedupe,
		dedupeCfg: cfg.DedupeCfg,
		logger:    logger,
	}
}

// Dispatch routes a webhook delivery to its handler. Errors carry the domain
// error that determines the HTTP status: ErrInvalidInput for a missing shop
// or payload, ErrNotFound for topics without a handler, ErrMalformedPayload
// for unusable order payloads and ErrPersistence for storage failures.
func (s *WebhookService) Dispatch(ctx context.Context, req WebhookRequest) (*WebhookResult, error) {
	if req.Shop == "" || len(req.Payload) == 0 {
		s.logger.Warn("Rejecting webhook with missing shop or payload",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop))
		return nil, shared.ErrInvalidInput
	}

	if s.isDuplicateDelivery(ctx, req.WebhookID) {
		s.logger.Info("Skipping duplicate webhook delivery",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop),
			zap.String("webhook_id", req.WebhookID))
		return &WebhookResult{Topic: req.Topic, Duplicate: true}, nil
	}

	var result *WebhookResult
	var err error
	switch req.Topic {
	case TopicOrdersCreate:
		result, err = s.handleOrderLifecycle(ctx, req, "order created")
	case TopicOrdersUpdated:
		result, err = s.handleOrderLifecycle(ctx, req, "order updated")
	case TopicOrdersCancelled:
		result, err = s.handleOrderLifecycle(ctx, req, "order cancelled")
	case TopicAppUninstalled:
		result, err = s.handleAppUninstalled(ctx, req)
	case TopicCustomersDataRequest, TopicCustomersRedact, TopicShopRedact:
		s.logger.Warn("Received data-privacy webhook without a handler",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop))
		return nil, shared.ErrNotFound
	default:
		s.logger.Warn("Received webhook for unknown topic",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop))
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Only an acknowledged delivery is marked. A failed handler leaves the
	// id unmarked so the platform's retry of the same delivery is processed
	// instead of short-circuited.
	s.markDelivery(ctx, req.WebhookID)
	return result, nil
}

// handleOrderLifecycle is the single handler behind every order topic. The
// create, update and cancel flows are identical (normalize then full-replace
// upsert); only the log message differs.
func (s *WebhookService) handleOrderLifecycle(ctx context.Context, req WebhookRequest, msg string) (*WebhookResult, error) {
	record, err := NormalizeOrderPayload(req.Payload)
	if err != nil {
		s.logger.Warn("Failed to normalize order payload",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop),
			zap.Error(err))
		return nil, err
	}

	stored, err := s.orders.Upsert(ctx, record)
	if err != nil {
		s.logger.Error("Failed to persist order",
			zap.String("topic", string(req.Topic)),
			zap.String("shop", req.Shop),
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Synced "+msg,
		zap.String("shop", req.Shop),
		zap.String("order_id", stored.OrderID),
		zap.String("order_number", stored.OrderNumber))

	return &WebhookResult{Topic: req.Topic, OrderID: stored.OrderID}, nil
}

// handleAppUninstalled removes every stored session for the shop. Uninstall
// must stay idempotent: a shop with no sessions still acknowledges 200.
func (s *WebhookService) handleAppUninstalled(ctx context.Context, req WebhookRequest) (*WebhookResult, error) {
	deleted, err := s.sessions.DeleteByShop(ctx, req.Shop)
	if err != nil {
		s.logger.Error("Failed to delete sessions on uninstall",
			zap.String("shop", req.Shop),
			zap.Error(err))
		return nil, err
	}

	if deleted == 0 {
		s.logger.Warn("Uninstall for shop with no stored sessions",
			zap.String("shop", req.Shop))
	} else {
		s.logger.Info("Deleted sessions on uninstall",
			zap.String("shop", req.Shop),
			zap.Int64("deleted", deleted))
	}

	return &WebhookResult{Topic: req.Topic, Message: "app uninstalled"}, nil
}

// isDuplicateDelivery reports whether the delivery id has already been
// acknowledged. Dedupe is best effort; store failures are logged and the
// delivery is processed anyway.
func (s *WebhookService) isDuplicateDelivery(ctx context.Context, webhookID string) bool {
	if webhookID == "" || s.dedupe == nil || !s.dedupeCfg.Enabled {
		return false
	}

	seen, err := s.dedupe.IsProcessed(ctx, webhookID)
	if err != nil {
		s.logger.Warn("Webhook dedupe store unavailable, processing anyway",
			zap.String("webhook_id", webhookID),
			zap.Error(err))
		return false
	}
	return seen
}

// markDelivery records a successfully handled delivery id. Marking failures
// are logged and otherwise ignored; the upsert keyed by the external order
// id keeps redeliveries harmless.
func (s *WebhookService) markDelivery(ctx context.Context, webhookID string) {
	if webhookID == "" || s.dedupe == nil || !s.dedupeCfg.Enabled {
		return
	}

	if _, err := s.dedupe.MarkProcessed(ctx, webhookID, s.dedupeCfg.TTL); err != nil {
		s.logger.Warn("Failed to mark webhook delivery as processed",
			zap.String("webhook_id", webhookID),
			zap.Error(err))
	}
}

// ParseTopic maps the raw header value to a Topic. Shopify sends topics in
// path form ("orders/create"); the constant form is also accepted.
func ParseTopic(raw string) Topic {
	switch raw {
	case "app/uninstalled", string(TopicAppUninstalled):
		return TopicAppUninstalled
	case "orders/create", string(TopicOrdersCreate):
		return TopicOrdersCreate
	case "orders/updated", string(TopicOrdersUpdated):
		return TopicOrdersUpdated
	case "orders/cancelled", string(TopicOrdersCancelled):
		return TopicOrdersCancelled
	case "customers/data_request", string(TopicCustomersDataRequest):
		return TopicCustomersDataRequest
	case "customers/redact", string(TopicCustomersRedact):
		return TopicCustomersRedact
	case "shop/redact", string(TopicShopRedact):
		return TopicShopRedact
	default:
		return Topic(raw)
	}
}
