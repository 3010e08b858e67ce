package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/repository"
	"github.com/mentorlens/mentorlens-api/internal/service"
)

func setupOwnerApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

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

	logger := zerolog.New(io.Discard)
	projector := service.NewResultsProjector(
		repository.NewSessionRepository(db),
		repository.NewMetricScoreRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewPointsRepository(db),
		repository.NewFeedbackRepository(db),
		nil, 0, logger,
	)

	app := fiber.New()
	owners := app.Group("/api/v1/owners")
	NewOwnerHandler(projector, logger).Register(owners)

	return app, db
}

func TestOwnerPointsEndpoint(t *testing.T) {
	app, db := setupOwnerApp(t)

	now := time.Now().UTC()
	for i, points := range []int{240, 270} {
		id := fmt.Sprintf("s%d", i+1)
		require.NoError(t, db.Create(&models.Session{
			ID:              id,
			OwnerID:         1,
			SourceFileRef:   "https://files.test/" + id + ".mp4",
			Status:          models.SessionStatusCompleted,
			StatusChangedAt: now,
			UploadedAt:      now,
		}).Error)
		require.NoError(t, db.Create(&models.PointsLedgerEntry{
			SessionID: id, OwnerID: 1, Points: points,
		}).Error)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/owners/1/points", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points struct {
		OwnerID           uint  `json:"owner_id"`
		TotalPoints       int64 `json:"total_points"`
		CompletedSessions int64 `json:"completed_sessions"`
	}
	decodeEnvelope(t, resp, &points)
	require.Equal(t, uint(1), points.OwnerID)
	require.Equal(t, int64(510), points.TotalPoints)
	require.Equal(t, int64(2), points.CompletedSessions)
}

func TestOwnerPointsRejectsBadID(t *testing.T) {
	app, _ := setupOwnerApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/owners/abc/points", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
