package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

func TestSessionRepoCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	session := models.Session{
		ID:                "a0000000-0000-0000-0000-000000000001",
		OwnerID:           7,
		SourceFileRef:     "https://files.test/intro.mp4",
		AccessibilityMode: models.AccessibilityModeBlind,
		Status:            models.SessionStatusPending,
		StatusChangedAt:   now,
		UploadedAt:        now,
	}
	require.NoError(t, repo.Create(ctx, &session))

	found, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, uint(7), found.OwnerID)
	require.Equal(t, models.AccessibilityModeBlind, found.AccessibilityMode)
	require.Equal(t, models.SessionStatusPending, found.Status)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepoUpdatePersistsTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	seedSession(t, db, "s1", 1, models.SessionStatusPending, time.Now().UTC())

	session, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)

	session.Status = models.SessionStatusFailed
	session.FailureReason = "analysis engine unreachable"
	require.NoError(t, repo.Update(ctx, &session))

	found, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusFailed, found.Status)
	require.Equal(t, "analysis engine unreachable", found.FailureReason)
}

func TestSessionRepoCountCompletedByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedSession(t, db, "s1", 1, models.SessionStatusCompleted, now)
	seedSession(t, db, "s2", 1, models.SessionStatusFailed, now)
	seedSession(t, db, "s3", 1, models.SessionStatusCompleted, now)
	seedSession(t, db, "s4", 2, models.SessionStatusCompleted, now)

	count, err := repo.CountCompletedByOwner(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = repo.CountCompletedByOwner(ctx, 3)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSessionRepoListStaleProcessing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedSession(t, db, "old", 1, models.SessionStatusProcessing, now.Add(-30*time.Minute))
	seedSession(t, db, "older", 1, models.SessionStatusProcessing, now.Add(-time.Hour))
	seedSession(t, db, "fresh", 1, models.SessionStatusProcessing, now)
	seedSession(t, db, "done", 1, models.SessionStatusCompleted, now.Add(-time.Hour))

	stale, err := repo.ListStaleProcessing(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 2)
	require.Equal(t, "older", stale[0].ID)
	require.Equal(t, "old", stale[1].ID)
}
