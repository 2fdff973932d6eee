package persistence

import (
	"context"
	"fmt"

	"github.com/shopsync/backend/internal/domain/session"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements session.Repository using GORM
type GormSessionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ session.Repository = (*GormSessionRepository)(nil)

// NewGormSessionRepository creates a new GormSessionRepository. A nil logger
// disables repository logging.
func NewGormSessionRepository(db *gorm.DB, logger *zap.Logger) *GormSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormSessionRepository{db: db, logger: logger}
}

// Save creates or replaces a session keyed by the platform session id
func (r *GormSessionRepository) Save(ctx context.Context, s *session.Session) error {
	model := models.SessionModelFromDomain(s)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop",
			"access_token",
			"scope",
			"expires_at",
			"is_online",
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Error("Failed to save session",
			zap.String("shop", model.Shop),
			zap.Error(err))
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	r.logger.Info("Saved session", zap.String("shop", model.Shop))
	return nil
}

// FindByShop returns all sessions stored for a shop domain
func (r *GormSessionRepository) FindByShop(ctx context.Context, shop string) ([]session.Session, error) {
	var sessionModels []models.SessionModel
	if err := r.db.WithContext(ctx).Where("shop = ?", shop).Find(&sessionModels).Error; err != nil {
		r.logger.Error("Failed to find sessions",
			zap.String("shop", shop),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	sessions := make([]session.Session, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = *model.ToDomain()
	}
	return sessions, nil
}

// DeleteByShop removes every session for a shop domain. Returns the number of
// rows deleted; deleting a shop with no sessions is not an error.
func (r *GormSessionRepository) DeleteByShop(ctx context.Context, shop string) (int64, error) {
	result := r.db.WithContext(ctx).Where("shop = ?", shop).Delete(&models.SessionModel{})
	if result.Error != nil {
		r.logger.Error("Failed to delete sessions",
			zap.String("shop", shop),
			zap.Error(result.Error))
		return 0, fmt.Errorf("%w: %v", shared.ErrPersistence, result.Error)
	}

	r.logger.Info("Deleted sessions",
		zap.String("shop", shop),
		zap.Int64("deleted", result.RowsAffected))
	return result.RowsAffected, nil
}
