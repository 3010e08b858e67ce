package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

func seedFeedback(t *testing.T, repo FeedbackRepository, createdAt time.Time, sessionID, category, text string, rating int) {
	t.Helper()

	item := models.FeedbackItem{
		SessionID:  sessionID,
		StudentRef: "student-1",
		Category:   category,
		Text:       text,
		Rating:     rating,
		CreatedAt:  createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), &item))
}

func TestFeedbackRepoListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	seedFeedback(t, repo, base.Add(-2*time.Hour), "", models.FeedbackCategoryAppreciation, "oldest", 5)
	seedFeedback(t, repo, base, "", models.FeedbackCategorySuggestion, "newest", 3)
	seedFeedback(t, repo, base.Add(-time.Hour), "", models.FeedbackCategoryAccessibility, "middle", 4)

	items, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "newest", items[0].Text)
	require.Equal(t, "middle", items[1].Text)
	require.Equal(t, "oldest", items[2].Text)
}

func TestFeedbackRepoListTiesKeepInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	at := time.Now().UTC().Truncate(time.Second)
	seedFeedback(t, repo, at, "", models.FeedbackCategorySuggestion, "first", 3)
	seedFeedback(t, repo, at, "", models.FeedbackCategorySuggestion, "second", 3)

	items, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "first", items[0].Text)
	require.Equal(t, "second", items[1].Text)
}

func TestFeedbackRepoListFiltersByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	categories := []string{
		models.FeedbackCategoryAppreciation,
		models.FeedbackCategoryAccessibility,
		models.FeedbackCategorySuggestion,
		models.FeedbackCategoryAppreciation,
		models.FeedbackCategoryAccessibility,
		models.FeedbackCategoryAppreciation,
	}
	for i, category := range categories {
		seedFeedback(t, repo, base.Add(time.Duration(i)*time.Minute), "", category, "entry", 4)
	}

	items, err := repo.List(ctx, models.FeedbackCategoryAccessibility)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Equal(t, models.FeedbackCategoryAccessibility, item.Category)
	}
}

func TestFeedbackRepoSummary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	seedFeedback(t, repo, base, "", models.FeedbackCategoryAppreciation, "a", 5)
	seedFeedback(t, repo, base, "", models.FeedbackCategoryAppreciation, "b", 4)
	seedFeedback(t, repo, base, "", models.FeedbackCategorySuggestion, "c", 3)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), summary.Total)
	require.Equal(t, int64(2), summary.Appreciation)
	require.Zero(t, summary.Accessibility)
	require.Equal(t, int64(1), summary.Suggestion)
	require.InDelta(t, 4.0, summary.AverageRating, 1e-9)
}

func TestFeedbackRepoSummaryEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Total)
	require.Zero(t, summary.AverageRating)
}

func TestFeedbackRepoListBySession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	seedFeedback(t, repo, base, "s1", models.FeedbackCategoryAppreciation, "for s1", 5)
	seedFeedback(t, repo, base, "s2", models.FeedbackCategorySuggestion, "for s2", 3)

	items, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "for s1", items[0].Text)
}
