package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

func TestMetricScoreRepoCreateBatchIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMetricScoreRepository(db)
	ctx := context.Background()

	seedSession(t, db, "s1", 1, models.SessionStatusProcessing, time.Now().UTC())

	batch := make([]models.MetricScore, 0, len(models.MetricNames))
	for i, name := range models.MetricNames {
		batch = append(batch, models.MetricScore{
			SessionID:  "s1",
			MetricName: name,
			Score:      0.7 + float64(i)*0.01,
			Suggestion: "tighten the intro",
			EvidenceClips: []models.EvidenceClip{
				{TimestampSeconds: 42, Description: "Paused to check understanding"},
			},
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	// Replaying the same step must not duplicate any (session, metric) pair.
	replay := make([]models.MetricScore, len(batch))
	copy(replay, batch)
	for i := range replay {
		replay[i].ID = 0
		replay[i].Score = 0.1
	}
	require.NoError(t, repo.CreateBatch(ctx, replay))

	count, err := repo.CountBySession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, int64(len(models.MetricNames)), count)

	scores, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, scores, len(models.MetricNames))
	require.InDelta(t, 0.7, scores[0].Score, 1e-9, "first write wins")
	require.Len(t, scores[0].EvidenceClips, 1)
}

func TestMetricScoreRepoCreateBatchEmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMetricScoreRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestMetricScoreRepoOwnerMeanBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMetricScoreRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	// Two completed sessions inside the window, one outside, one not completed.
	seedSession(t, db, "in1", 1, models.SessionStatusCompleted, now.Add(-2*24*time.Hour))
	seedScores(t, db, "in1", 0.8, 0.8, 0.8, 0.8, 0.8)

	seedSession(t, db, "in2", 1, models.SessionStatusCompleted, now.Add(-5*24*time.Hour))
	seedScores(t, db, "in2", 0.6, 0.6, 0.6, 0.6, 0.6)

	seedSession(t, db, "out", 1, models.SessionStatusCompleted, now.Add(-10*24*time.Hour))
	seedScores(t, db, "out", 0.1, 0.1, 0.1, 0.1, 0.1)

	seedSession(t, db, "pend", 1, models.SessionStatusScored, now.Add(-3*24*time.Hour))
	seedScores(t, db, "pend", 1, 1, 1, 1, 1)

	// Another owner entirely.
	seedSession(t, db, "other", 2, models.SessionStatusCompleted, now.Add(-2*24*time.Hour))
	seedScores(t, db, "other", 1, 1, 1, 1, 1)

	mean, sessions, err := repo.OwnerMeanBetween(ctx, 1, now.Add(-7*24*time.Hour), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), sessions)
	require.InDelta(t, 0.7, mean, 1e-9)
}

func TestMetricScoreRepoOwnerMeanBetweenNoPriorSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMetricScoreRepository(db)

	mean, sessions, err := repo.OwnerMeanBetween(context.Background(), 1, time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)
	require.Zero(t, sessions)
	require.Zero(t, mean)
}

func TestMetricScoreRepoWindowExcludesUpperBound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMetricScoreRepository(db)
	ctx := context.Background()

	uploadedAt := time.Now().UTC().Truncate(time.Second)
	seedSession(t, db, "edge", 1, models.SessionStatusCompleted, uploadedAt)
	seedScores(t, db, "edge", 0.9, 0.9, 0.9, 0.9, 0.9)

	// [from, to) — a session uploaded exactly at `to` is not a prior session.
	_, sessions, err := repo.OwnerMeanBetween(ctx, 1, uploadedAt.Add(-7*24*time.Hour), uploadedAt)
	require.NoError(t, err)
	require.Zero(t, sessions)

	_, sessions, err = repo.OwnerMeanBetween(ctx, 1, uploadedAt.Add(-7*24*time.Hour), uploadedAt.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(1), sessions)
}
