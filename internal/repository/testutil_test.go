package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test keeps counts isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Session{},
		&models.MetricScore{},
		&models.Badge{},
		&models.PointsLedgerEntry{},
		&models.FeedbackItem{},
	))

	return db
}

func seedSession(t *testing.T, db *gorm.DB, id string, ownerID uint, status string, uploadedAt time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&models.Session{
		ID:              id,
		OwnerID:         ownerID,
		SourceFileRef:   "https://files.test/" + id + ".mp4",
		Status:          status,
		StatusChangedAt: uploadedAt,
		UploadedAt:      uploadedAt,
	}).Error)
}

func seedScores(t *testing.T, db *gorm.DB, sessionID string, values ...float64) {
	t.Helper()

	scores := make([]models.MetricScore, 0, len(values))
	for i, value := range values {
		scores = append(scores, models.MetricScore{
			SessionID:  sessionID,
			MetricName: models.MetricNames[i],
			Score:      value,
		})
	}
	require.NoError(t, db.Create(&scores).Error)
}
