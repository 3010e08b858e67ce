package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

func TestBadgeRepoAwardBatchIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	seedSession(t, db, "s1", 1, models.SessionStatusScored, time.Now().UTC())

	awardedAt := time.Now().UTC()
	badges := []models.Badge{
		{SessionID: "s1", Name: "Clarity Master", Icon: "🎯", AwardedAt: awardedAt},
		{SessionID: "s1", Name: "Rising Star", Icon: "⭐", AwardedAt: awardedAt},
	}
	require.NoError(t, repo.AwardBatch(ctx, badges))

	replay := []models.Badge{
		{SessionID: "s1", Name: "Clarity Master", Icon: "🎯", AwardedAt: awardedAt.Add(time.Hour)},
		{SessionID: "s1", Name: "Rising Star", Icon: "⭐", AwardedAt: awardedAt.Add(time.Hour)},
	}
	require.NoError(t, repo.AwardBatch(ctx, replay))

	found, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "Clarity Master", found[0].Name)
	require.Equal(t, "Rising Star", found[1].Name)
}

func TestBadgeRepoSameNameAcrossSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedSession(t, db, "s1", 1, models.SessionStatusScored, now)
	seedSession(t, db, "s2", 1, models.SessionStatusScored, now)

	require.NoError(t, repo.AwardBatch(ctx, []models.Badge{{SessionID: "s1", Name: "Pace Master", AwardedAt: now}}))
	require.NoError(t, repo.AwardBatch(ctx, []models.Badge{{SessionID: "s2", Name: "Pace Master", AwardedAt: now}}))

	first, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.ListBySession(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, second, 1)
}

func TestBadgeRepoAwardBatchEmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	require.NoError(t, repo.AwardBatch(context.Background(), nil))
}
