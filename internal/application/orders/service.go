package orders

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/order"
	"go.uber.org/zap"
)

// OrderListing is the admin index view: all mirrored orders plus an
// aggregate revenue figure.
type OrderListing struct {
	Orders     []order.Order
	Count      int
	TotalPrice string
}

// UpdateTagsResult reports a tag update. UserErrors carries validation
// failures returned by the platform's Admin API verbatim; when non-empty
// the update was rejected remotely and the mirror was left untouched.
type UpdateTagsResult struct {
	Order      *order.Order
	UserErrors []order.UserError
}

// Service implements the admin order operations. Reads serve the local
// mirror; tag writes go to the platform first because the remote store is
// the source of truth, with the mirror reconciled afterwards.
type Service struct {
	orders order.Repository
	tags   order.TagService
	logger *zap.Logger
}

// ServiceConfig contains configuration for Service
type ServiceConfig struct {
	Orders order.Repository
	Tags   order.TagService
	Logger *zap.Logger
}

// NewService creates a new Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders: cfg.Orders,
		tags:   cfg.Tags,
		logger: logger,
	}
}

// ListOrders returns all mirrored orders with their aggregate total.
// Prices are stored verbatim, so an unparsable price is skipped from the
// aggregate with a warning rather than failing the listing.
func (s *Service) ListOrders(ctx context.Context) (*OrderListing, error) {
	records, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, record := range records {
		price, err := decimal.NewFromString(record.TotalPrice)
		if err != nil {
			s.logger.Warn("Skipping unparsable order price in aggregate",
				zap.String("order_id", record.OrderID),
				zap.String("total_price", record.TotalPrice))
			continue
		}
		total = total.Add(price)
	}

	return &OrderListing{
		Orders:     records,
		Count:      len(records),
		TotalPrice: total.String(),
	}, nil
}

// GetOrder returns a single mirrored order by its external id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	return s.orders.FindByOrderID(ctx, orderID)
}

// UpdateTags applies tag deltas to an order. The Admin API mutations run
// first; userErrors from either mutation abort the update and are returned
// verbatim. On remote success the local mirror is reconciled. A mirror
// failure at that point is logged but does not fail the request, since the
// remote update already happened and the next order webhook resyncs the row.
//
// Concurrent tag edits on the same order can lose local updates between the
// read and the reconcile; the remote store does not have this race.
func (s *Service) UpdateTags(ctx context.Context, orderID string, adds, removes []string) (*UpdateTagsResult, error) {
	record, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(adds) > 0 {
		userErrors, err := s.tags.AddTags(ctx, orderID, adds)
		if err != nil {
			s.logger.Error("Admin API tagsAdd failed",
				zap.String("order_id", orderID),
				zap.Error(err))
			return nil, err
		}
		if len(userErrors) > 0 {
			return &UpdateTagsResult{UserErrors: userErrors}, nil
		}
	}

	if len(removes) > 0 {
		userErrors, err := s.tags.RemoveTags(ctx, orderID, removes)
		if err != nil {
			s.logger.Error("Admin API tagsRemove failed",
				zap.String("order_id", orderID),
				zap.Error(err))
			return nil, err
		}
		if len(userErrors) > 0 {
			return &UpdateTagsResult{UserErrors: userErrors}, nil
		}
	}

	updated, err := s.orders.UpdateTags(ctx, orderID, record.TagList(), adds, removes)
	if err != nil {
		s.logger.Error("Failed to reconcile local tags after remote update",
			zap.String("order_id", orderID),
			zap.Error(err))
		// The remote tags are already updated; serve the stale mirror
		// rather than failing a write that succeeded remotely.
		return &UpdateTagsResult{Order: record}, nil
	}

	s.logger.Info("Updated order tags",
		zap.String("order_id", orderID),
		zap.Strings("adds", adds),
		zap.Strings("removes", removes))

	return &UpdateTagsResult{Order: updated}, nil
}
