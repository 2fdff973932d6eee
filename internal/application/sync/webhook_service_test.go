package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopsync/backend/internal/domain/order"
	"github.com/shopsync/backend/internal/domain/session"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Upsert(ctx context.Context, record *order.Order) (*order.Order, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateTags(ctx context.Context, orderID string, current, adds, removes []string) (*order.Order, error) {
	args := m.Called(ctx, orderID, current, adds, removes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockSessionRepository is a mock implementation of session.Repository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByShop(ctx context.Context, shop string) ([]session.Session, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteByShop(ctx context.Context, shop string) (int64, error) {
	args := m.Called(ctx, shop)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestWebhookService(orders *MockOrderRepository, sessions *MockSessionRepository, dedupe shared.IdempotencyStore) *WebhookService {
	return NewWebhookService(WebhookServiceConfig{
		Orders:    orders,
		Sessions:  sessions,
		Dedupe:    dedupe,
		DedupeCfg: shared.DefaultIdempotencyConfig(),
		Logger:    zap.NewNop(),
	})
}

const orderPayload = `{"id": 5001, "order_number": 1001, "total_price": "42.50"}`

func TestWebhookService_Dispatch_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing shop is rejected", func(t *testing.T) {
		svc := newTestWebhookService(new(MockOrderRepository), new(MockSessionRepository), nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicOrdersCreate,
			Payload: []byte(orderPayload),
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		svc := newTestWebhookService(new(MockOrderRepository), new(MockSessionRepository), nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic: TopicOrdersCreate,
			Shop:  "acme.myshopify.com",
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestWebhookService_Dispatch_OrderTopics(t *testing.T) {
	ctx := context.Background()

	orderTopics := []Topic{TopicOrdersCreate, TopicOrdersUpdated, TopicOrdersCancelled}

	for _, topic := range orderTopics {
		t.Run(string(topic)+" normalizes and upserts", func(t *testing.T) {
			orders := new(MockOrderRepository)
			orders.On("Upsert", ctx, mock.MatchedBy(func(record *order.Order) bool {
				return record.OrderID == "5001" && record.TotalPrice == "42.50"
			})).Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil)

			svc := newTestWebhookService(orders, new(MockSessionRepository), nil)

			result, err := svc.Dispatch(ctx, WebhookRequest{
				Topic:   topic,
				Shop:    "acme.myshopify.com",
				Payload: []byte(orderPayload),
			})

			require.NoError(t, err)
			assert.Equal(t, topic, result.Topic)
			assert.Equal(t, "5001", result.OrderID)
			assert.False(t, result.Duplicate)
			orders.AssertExpectations(t)
		})
	}

	t.Run("payload without order id is malformed", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestWebhookService(orders, new(MockSessionRepository), nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicOrdersCreate,
			Shop:    "acme.myshopify.com",
			Payload: []byte(`{"order_number": 1001}`),
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrMalformedPayload)
		orders.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("storage failure surfaces as persistence error", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(nil, shared.ErrPersistence)

		svc := newTestWebhookService(orders, new(MockSessionRepository), nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicOrdersUpdated,
			Shop:    "acme.myshopify.com",
			Payload: []byte(orderPayload),
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrPersistence)
	})
}

func TestWebhookService_Dispatch_AppUninstalled(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes sessions for the shop", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("DeleteByShop", ctx, "acme.myshopify.com").Return(int64(2), nil)

		svc := newTestWebhookService(new(MockOrderRepository), sessions, nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicAppUninstalled,
			Shop:    "acme.myshopify.com",
			Payload: []byte(`{"domain": "acme.myshopify.com"}`),
		})

		require.NoError(t, err)
		assert.Equal(t, "app uninstalled", result.Message)
		sessions.AssertExpectations(t)
	})

	t.Run("succeeds when no sessions exist", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("DeleteByShop", ctx, "acme.myshopify.com").Return(int64(0), nil)

		svc := newTestWebhookService(new(MockOrderRepository), sessions, nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicAppUninstalled,
			Shop:    "acme.myshopify.com",
			Payload: []byte(`{"domain": "acme.myshopify.com"}`),
		})

		require.NoError(t, err)
		assert.Equal(t, "app uninstalled", result.Message)
	})

	t.Run("storage failure surfaces the error", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("DeleteByShop", ctx, "acme.myshopify.com").
			Return(int64(0), shared.ErrPersistence)

		svc := newTestWebhookService(new(MockOrderRepository), sessions, nil)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicAppUninstalled,
			Shop:    "acme.myshopify.com",
			Payload: []byte(`{"domain": "acme.myshopify.com"}`),
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrPersistence)
	})
}

func TestWebhookService_Dispatch_UnhandledTopics(t *testing.T) {
	ctx := context.Background()

	topics := []Topic{
		TopicCustomersDataRequest,
		TopicCustomersRedact,
		TopicShopRedact,
		Topic("PRODUCTS_CREATE"),
	}

	for _, topic := range topics {
		t.Run(string(topic), func(t *testing.T) {
			orders := new(MockOrderRepository)
			sessions := new(MockSessionRepository)
			svc := newTestWebhookService(orders, sessions, nil)

			result, err := svc.Dispatch(ctx, WebhookRequest{
				Topic:   topic,
				Shop:    "acme.myshopify.com",
				Payload: []byte(`{}`),
			})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, shared.ErrNotFound)
			orders.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
			sessions.AssertNotCalled(t, "DeleteByShop", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookService_Dispatch_Dedupe(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate delivery short-circuits before the handler", func(t *testing.T) {
		orders := new(MockOrderRepository)
		dedupe := new(MockIdempotencyStore)
		dedupe.On("IsProcessed", ctx, "delivery-1").Return(true, nil)

		svc := newTestWebhookService(orders, new(MockSessionRepository), dedupe)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:     TopicOrdersCreate,
			Shop:      "acme.myshopify.com",
			WebhookID: "delivery-1",
			Payload:   []byte(orderPayload),
		})

		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		assert.Empty(t, result.OrderID)
		orders.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("new delivery is processed then marked", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil)
		dedupe := new(MockIdempotencyStore)
		dedupe.On("IsProcessed", ctx, "delivery-2").Return(false, nil)
		dedupe.On("MarkProcessed", ctx, "delivery-2", mock.Anything).Return(true, nil)

		svc := newTestWebhookService(orders, new(MockSessionRepository), dedupe)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:     TopicOrdersCreate,
			Shop:      "acme.myshopify.com",
			WebhookID: "delivery-2",
			Payload:   []byte(orderPayload),
		})

		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		assert.Equal(t, "5001", result.OrderID)
		dedupe.AssertExpectations(t)
	})

	t.Run("dedupe store failure does not block processing", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil)
		dedupe := new(MockIdempotencyStore)
		dedupe.On("IsProcessed", ctx, "delivery-3").
			Return(false, errors.New("redis: connection refused"))
		dedupe.On("MarkProcessed", ctx, "delivery-3", mock.Anything).
			Return(false, errors.New("redis: connection refused"))

		svc := newTestWebhookService(orders, new(MockSessionRepository), dedupe)

		result, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:     TopicOrdersCreate,
			Shop:      "acme.myshopify.com",
			WebhookID: "delivery-3",
			Payload:   []byte(orderPayload),
		})

		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		orders.AssertExpectations(t)
	})

	t.Run("failed delivery stays unmarked so the retry is processed", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(nil, shared.ErrPersistence).Once()
		orders.On("Upsert", ctx, mock.Anything).
			Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil).Once()
		dedupe := new(MockIdempotencyStore)
		dedupe.On("IsProcessed", ctx, "delivery-5").Return(false, nil)
		dedupe.On("MarkProcessed", ctx, "delivery-5", mock.Anything).Return(true, nil)

		svc := newTestWebhookService(orders, new(MockSessionRepository), dedupe)

		req := WebhookRequest{
			Topic:     TopicOrdersCreate,
			Shop:      "acme.myshopify.com",
			WebhookID: "delivery-5",
			Payload:   []byte(orderPayload),
		}

		_, err := svc.Dispatch(ctx, req)
		assert.ErrorIs(t, err, shared.ErrPersistence)

		result, err := svc.Dispatch(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		assert.Equal(t, "5001", result.OrderID)
		orders.AssertExpectations(t)
		dedupe.AssertNumberOfCalls(t, "MarkProcessed", 1)
	})

	t.Run("missing delivery id skips the store entirely", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil)
		dedupe := new(MockIdempotencyStore)

		svc := newTestWebhookService(orders, new(MockSessionRepository), dedupe)

		_, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:   TopicOrdersCreate,
			Shop:    "acme.myshopify.com",
			Payload: []byte(orderPayload),
		})

		require.NoError(t, err)
		dedupe.AssertNotCalled(t, "IsProcessed", mock.Anything, mock.Anything)
		dedupe.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("disabled dedupe skips the store", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Upsert", ctx, mock.Anything).
			Return(&order.Order{OrderID: "5001", OrderNumber: "1001"}, nil)
		dedupe := new(MockIdempotencyStore)

		svc := NewWebhookService(WebhookServiceConfig{
			Orders:    orders,
			Sessions:  new(MockSessionRepository),
			Dedupe:    dedupe,
			DedupeCfg: shared.IdempotencyConfig{TTL: time.Hour, Enabled: false},
			Logger:    zap.NewNop(),
		})

		_, err := svc.Dispatch(ctx, WebhookRequest{
			Topic:     TopicOrdersCreate,
			Shop:      "acme.myshopify.com",
			WebhookID: "delivery-4",
			Payload:   []byte(orderPayload),
		})

		require.NoError(t, err)
		dedupe.AssertNotCalled(t, "IsProcessed", mock.Anything, mock.Anything)
		dedupe.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}
