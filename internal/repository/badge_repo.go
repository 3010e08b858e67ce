package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// BadgeRepository defines data operations for awarded badges.
type BadgeRepository interface {
	AwardBatch(ctx context.Context, badges []models.Badge) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Badge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository instantiates the repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// AwardBatch inserts the badges, ignoring any (session, name) pair that was
// already awarded. Re-running the derivation step is therefore a no-op.
func (r *badgeRepository) AwardBatch(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&badges).Error
}

func (r *badgeRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&badges).Error

	return badges, err
}
