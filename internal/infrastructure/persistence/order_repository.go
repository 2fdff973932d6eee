package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopsync/backend/internal/domain/order"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ order.Repository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository. A nil logger
// disables repository logging.
func NewGormOrderRepository(db *gorm.DB, logger *zap.Logger) *GormOrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormOrderRepository{db: db, logger: logger}
}

// Upsert inserts or fully replaces the record keyed by the external order id.
// Every mutable column is overwritten with the incoming value, so a nil
// optional field clears the stored column rather than preserving it.
func (r *GormOrderRepository) Upsert(ctx context.Context, record *order.Order) (*order.Order, error) {
	model := models.OrderModelFromDomain(record)
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if model.SyncedAt.IsZero() {
		model.SyncedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_number",
			"total_price",
			"payment_gateway",
			"customer_email",
			"customer_full_name",
			"customer_address",
			"tags",
			"created_at",
			"synced_at",
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Error("Failed to upsert order",
			zap.String("order_id", model.OrderID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	r.logger.Info("Upserted order",
		zap.String("order_id", model.OrderID),
		zap.String("order_number", model.OrderNumber))

	// On conflict the surrogate id of the pre-existing row wins, so the
	// stored state has to be read back rather than echoed.
	return r.FindByOrderID(ctx, model.OrderID)
}

// List returns all stored records
func (r *GormOrderRepository) List(ctx context.Context) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).Find(&orderModels).Error; err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	orders := make([]order.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// FindByOrderID finds a record by its external order id
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		r.logger.Error("Failed to find order",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return model.ToDomain(), nil
}

// UpdateTags reconciles the current tag set with the deltas and persists the
// result on the row keyed by orderID. An empty result set is stored as NULL.
func (r *GormOrderRepository) UpdateTags(ctx context.Context, orderID string, current, adds, removes []string) (*order.Order, error) {
	reconciled := order.ReconcileTags(current, adds, removes)
	joined := order.JoinTags(reconciled)

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_id = ?", orderID).
		Update("tags", joined)
	if result.Error != nil {
		r.logger.Error("Failed to update order tags",
			zap.String("order_id", orderID),
			zap.Error(result.Error))
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("Tag update for unknown order",
			zap.String("order_id", orderID))
		return nil, shared.ErrNotFound
	}

	r.logger.Info("Updated order tags",
		zap.String("order_id", orderID),
		zap.Strings("tags", reconciled))

	return r.FindByOrderID(ctx, orderID)
}
