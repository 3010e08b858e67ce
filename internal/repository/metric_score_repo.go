package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// MetricScoreRepository defines data operations for per-metric scores.
type MetricScoreRepository interface {
	CreateBatch(ctx context.Context, scores []models.MetricScore) error
	ListBySession(ctx context.Context, sessionID string) ([]models.MetricScore, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	OwnerMeanBetween(ctx context.Context, ownerID uint, from, to time.Time) (float64, int64, error)
}

type metricScoreRepository struct {
	db *gorm.DB
}

// NewMetricScoreRepository instantiates the repository.
func NewMetricScoreRepository(db *gorm.DB) MetricScoreRepository {
	return &metricScoreRepository{db: db}
}

// CreateBatch inserts the score rows, silently skipping any (session, metric)
// pair that already exists so a replayed pipeline step cannot duplicate rows.
func (r *metricScoreRepository) CreateBatch(ctx context.Context, scores []models.MetricScore) error {
	if len(scores) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "metric_name"}},
			DoNothing: true,
		}).
		Create(&scores).Error
}

func (r *metricScoreRepository) ListBySession(ctx context.Context, sessionID string) ([]models.MetricScore, error) {
	var scores []models.MetricScore
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&scores).Error

	return scores, err
}

func (r *metricScoreRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MetricScore{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error

	return count, err
}

// OwnerMeanBetween returns the mean metric score across the owner's completed
// sessions uploaded in [from, to), plus the number of sessions in the window.
// Used for the weekly-improvement comparison.
func (r *metricScoreRepository) OwnerMeanBetween(ctx context.Context, ownerID uint, from, to time.Time) (float64, int64, error) {
	type row struct {
		Mean     float64
		Sessions int64
	}

	var result row
	err := r.db.WithContext(ctx).Model(&models.MetricScore{}).
		Select("COALESCE(AVG(metric_scores.score), 0) AS mean, COUNT(DISTINCT metric_scores.session_id) AS sessions").
		Joins("JOIN sessions ON sessions.id = metric_scores.session_id").
		Where("sessions.owner_id = ?", ownerID).
		Where("sessions.status = ?", models.SessionStatusCompleted).
		Where("sessions.uploaded_at >= ? AND sessions.uploaded_at < ?", from, to).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}

	return result.Mean, result.Sessions, nil
}
