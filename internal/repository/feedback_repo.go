package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// FeedbackSummary aggregates the store for the feedback overview strip.
type FeedbackSummary struct {
	Total         int64   `json:"total"`
	Appreciation  int64   `json:"appreciation"`
	Accessibility int64   `json:"accessibility"`
	Suggestion    int64   `json:"suggestion"`
	AverageRating float64 `json:"average_rating"`
}

// FeedbackRepository defines data operations for the append-only feedback store.
type FeedbackRepository interface {
	Create(ctx context.Context, item *models.FeedbackItem) error
	List(ctx context.Context, category string) ([]models.FeedbackItem, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.FeedbackItem, error)
	Summary(ctx context.Context) (FeedbackSummary, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, item *models.FeedbackItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// List returns items newest first; equal timestamps keep insertion order.
func (r *feedbackRepository) List(ctx context.Context, category string) ([]models.FeedbackItem, error) {
	query := r.db.WithContext(ctx).Model(&models.FeedbackItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.FeedbackItem
	if err := query.Order("created_at DESC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *feedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id ASC").
		Find(&items).Error

	return items, err
}

func (r *feedbackRepository) Summary(ctx context.Context) (FeedbackSummary, error) {
	var summary FeedbackSummary

	type categoryCount struct {
		Category string
		Count    int64
	}

	var counts []categoryCount
	if err := r.db.WithContext(ctx).Model(&models.FeedbackItem{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&counts).Error; err != nil {
		return FeedbackSummary{}, err
	}

	for _, c := range counts {
		summary.Total += c.Count
		switch c.Category {
		case models.FeedbackCategoryAppreciation:
			summary.Appreciation = c.Count
		case models.FeedbackCategoryAccessibility:
			summary.Accessibility = c.Count
		case models.FeedbackCategorySuggestion:
			summary.Suggestion = c.Count
		}
	}

	if summary.Total > 0 {
		if err := r.db.WithContext(ctx).Model(&models.FeedbackItem{}).
			Select("AVG(rating)").
			Scan(&summary.AverageRating).Error; err != nil {
			return FeedbackSummary{}, err
		}
	}

	return summary, nil
}
