package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ShopKey is the context key for the shop domain
	ShopKey contextKey = "shop"
	// TopicKey is the context key for the webhook topic
	TopicKey contextKey = "topic"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enrichedLogger := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithShop adds the shop domain to context and returns enriched logger
func WithShop(ctx context.Context, logger *zap.Logger, shop string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ShopKey, shop)
	enrichedLogger := logger.With(zap.String("shop", shop))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithTopic adds the webhook topic to context and returns enriched logger
func WithTopic(ctx context.Context, logger *zap.Logger, topic string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, TopicKey, topic)
	enrichedLogger := logger.With(zap.String("topic", topic))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetShop retrieves the shop domain from context
func GetShop(ctx context.Context) string {
	if shop, ok := ctx.Value(ShopKey).(string); ok {
		return shop
	}
	return ""
}

// GetTopic retrieves the webhook topic from context
func GetTopic(ctx context.Context) string {
	if topic, ok := ctx.Value(TopicKey).(string); ok {
		return topic
	}
	return ""
}
