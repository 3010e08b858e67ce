package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/dto"
	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/repository"
)

// weeklyWindow is the lookback used for the improvement comparison.
const weeklyWindow = 7 * 24 * time.Hour

// ResultsProjector assembles the client-facing results view from the session,
// score, badge, points, and feedback stores.
type ResultsProjector interface {
	ProjectResults(ctx context.Context, sessionID string) (dto.SessionResultsResponse, error)
	OwnerPoints(ctx context.Context, ownerID uint) (dto.OwnerPointsResponse, error)
}

type resultsProjector struct {
	sessions repository.SessionRepository
	scores   repository.MetricScoreRepository
	badges   repository.BadgeRepository
	points   repository.PointsRepository
	feedback repository.FeedbackRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewResultsProjector constructs the projector. The redis client is optional
// and only backs the owner points lookup; the results view itself is always
// recomputed so the overall score can never be served stale.
func NewResultsProjector(
	sessions repository.SessionRepository,
	scores repository.MetricScoreRepository,
	badges repository.BadgeRepository,
	points repository.PointsRepository,
	feedback repository.FeedbackRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ResultsProjector {
	return &resultsProjector{
		sessions: sessions,
		scores:   scores,
		badges:   badges,
		points:   points,
		feedback: feedback,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "results_projector").Logger(),
	}
}

func (s *resultsProjector) ProjectResults(ctx context.Context, sessionID string) (dto.SessionResultsResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResultsResponse{}, ErrSessionNotFound
		}
		return dto.SessionResultsResponse{}, err
	}

	if !session.IsCompleted() {
		return dto.SessionResultsResponse{}, fmt.Errorf("session status is %q: %w", session.Status, ErrNotReady)
	}

	scores, err := s.scores.ListBySession(ctx, sessionID)
	if err != nil {
		return dto.SessionResultsResponse{}, err
	}

	// A partial metric set must never be rendered as if final.
	if len(scores) < len(models.MetricNames) {
		return dto.SessionResultsResponse{}, fmt.Errorf("session has %d of %d metric scores: %w", len(scores), len(models.MetricNames), ErrNotReady)
	}

	overall := MeanScore(scores)
	tier := ClassifyOverall(overall)

	badges, err := s.badges.ListBySession(ctx, sessionID)
	if err != nil {
		return dto.SessionResultsResponse{}, err
	}

	earned := 0
	entry, err := s.points.GetBySession(ctx, sessionID)
	switch {
	case err == nil:
		earned = entry.Points
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn().Str("session_id", sessionID).Msg("completed session has no points ledger entry")
	default:
		return dto.SessionResultsResponse{}, err
	}

	improvement, err := s.weeklyImprovement(ctx, session, overall)
	if err != nil {
		return dto.SessionResultsResponse{}, err
	}

	feedbackSummary, err := s.sessionFeedbackSummary(ctx, sessionID)
	if err != nil {
		return dto.SessionResultsResponse{}, err
	}

	metrics := orderedMetricResponses(scores)
	badgeResponses := make([]dto.BadgeResponse, 0, len(badges))
	for _, badge := range badges {
		badgeResponses = append(badgeResponses, dto.NewBadgeResponse(badge))
	}

	return dto.SessionResultsResponse{
		SessionID:    session.ID,
		OverallScore: overall,
		Tier: dto.TierResponse{
			Name:    tier.Name,
			Emoji:   tier.Emoji,
			Title:   tier.Title,
			Message: tier.Message,
		},
		Metrics:              metrics,
		Badges:               badgeResponses,
		PointsEarned:         earned,
		WeeklyImprovementPct: improvement,
		Feedback:             feedbackSummary,
	}, nil
}

// weeklyImprovement compares the session's overall score against the mean of
// the owner's completed sessions in the prior 7-day window. Nil, not zero,
// when no prior sessions exist.
func (s *resultsProjector) weeklyImprovement(ctx context.Context, session models.Session, overall float64) (*float64, error) {
	from := session.UploadedAt.Add(-weeklyWindow)
	priorMean, priorSessions, err := s.scores.OwnerMeanBetween(ctx, session.OwnerID, from, session.UploadedAt)
	if err != nil {
		return nil, err
	}

	if priorSessions == 0 || priorMean == 0 {
		return nil, nil
	}

	pct := (overall - priorMean) / priorMean * 100
	return &pct, nil
}

func (s *resultsProjector) sessionFeedbackSummary(ctx context.Context, sessionID string) (dto.FeedbackSummaryResponse, error) {
	items, err := s.feedback.ListBySession(ctx, sessionID)
	if err != nil {
		return dto.FeedbackSummaryResponse{}, err
	}

	summary := dto.FeedbackSummaryResponse{Total: int64(len(items))}
	var ratingSum int
	for _, item := range items {
		ratingSum += item.Rating
		switch item.Category {
		case models.FeedbackCategoryAppreciation:
			summary.Appreciation++
		case models.FeedbackCategoryAccessibility:
			summary.Accessibility++
		case models.FeedbackCategorySuggestion:
			summary.Suggestion++
		}
	}

	if summary.Total > 0 {
		summary.AverageRating = float64(ratingSum) / float64(summary.Total)
	}

	return summary, nil
}

// OwnerPoints reports the ledger total for an owner, cached briefly in redis.
func (s *resultsProjector) OwnerPoints(ctx context.Context, ownerID uint) (dto.OwnerPointsResponse, error) {
	cacheKey := fmt.Sprintf("points:owner:%d", ownerID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.OwnerPointsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("owner_id", ownerID).Msg("owner points cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read owner points cache")
		}
	}

	total, err := s.points.TotalByOwner(ctx, ownerID)
	if err != nil {
		return dto.OwnerPointsResponse{}, err
	}

	completed, err := s.sessions.CountCompletedByOwner(ctx, ownerID)
	if err != nil {
		return dto.OwnerPointsResponse{}, err
	}

	response := dto.OwnerPointsResponse{
		OwnerID:           ownerID,
		TotalPoints:       total,
		CompletedSessions: completed,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store owner points cache")
			}
		}
	}

	return response, nil
}

// orderedMetricResponses returns the metrics in canonical display order.
func orderedMetricResponses(scores []models.MetricScore) []dto.MetricResponse {
	byName := make(map[string]models.MetricScore, len(scores))
	for _, score := range scores {
		byName[score.MetricName] = score
	}

	metrics := make([]dto.MetricResponse, 0, len(models.MetricNames))
	for _, name := range models.MetricNames {
		if score, ok := byName[name]; ok {
			metrics = append(metrics, dto.NewMetricResponse(score))
		}
	}

	return metrics
}
