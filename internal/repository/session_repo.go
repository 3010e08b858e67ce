package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// SessionRepository defines data operations for evaluation sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	CountCompletedByOwner(ctx context.Context, ownerID uint) (int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Session, error)
	ListStaleProcessing(ctx context.Context, olderThan time.Time) ([]models.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) CountCompletedByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("owner_id = ?", ownerID).
		Where("status = ?", models.SessionStatusCompleted).
		Count(&count).Error

	return count, err
}

func (r *sessionRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&sessions).Error

	return sessions, err
}

// ListStaleProcessing returns sessions stuck in processing whose last state
// change predates olderThan. Consumed by the external watchdog.
func (r *sessionRepository) ListStaleProcessing(ctx context.Context, olderThan time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("status = ?", models.SessionStatusProcessing).
		Where("status_changed_at < ?", olderThan).
		Order("status_changed_at ASC").
		Find(&sessions).Error

	return sessions, err
}
