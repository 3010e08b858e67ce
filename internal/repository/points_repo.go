package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// PointsRepository defines data operations for the points ledger.
type PointsRepository interface {
	Credit(ctx context.Context, entry *models.PointsLedgerEntry) error
	GetBySession(ctx context.Context, sessionID string) (models.PointsLedgerEntry, error)
	TotalByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type pointsRepository struct {
	db *gorm.DB
}

// NewPointsRepository instantiates the repository.
func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

// Credit records the session's points, at most once per session.
func (r *pointsRepository) Credit(ctx context.Context, entry *models.PointsLedgerEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(entry).Error
}

func (r *pointsRepository) GetBySession(ctx context.Context, sessionID string) (models.PointsLedgerEntry, error) {
	var entry models.PointsLedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "session_id = ?", sessionID).Error; err != nil {
		return models.PointsLedgerEntry{}, err
	}

	return entry, nil
}

func (r *pointsRepository) TotalByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.PointsLedgerEntry{}).
		Select("COALESCE(SUM(points), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&total).Error

	return total, err
}
