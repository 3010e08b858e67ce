package dto

import (
	"time"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// EvidenceClipResponse serializes one timestamped evidence excerpt.
type EvidenceClipResponse struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Description      string  `json:"description"`
}

// MetricResponse serializes one scored metric with its evidence.
type MetricResponse struct {
	Name          string                 `json:"name"`
	Score         float64                `json:"score"`
	Icon          string                 `json:"icon"`
	Suggestion    string                 `json:"suggestion"`
	EvidenceClips []EvidenceClipResponse `json:"evidence_clips"`
}

// BadgeResponse serializes an awarded badge.
type BadgeResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// TierResponse carries the qualitative label bucket for an overall score.
type TierResponse struct {
	Name    string `json:"name"`
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// FeedbackSummaryResponse aggregates student feedback counts for the session.
type FeedbackSummaryResponse struct {
	Total         int64   `json:"total"`
	Appreciation  int64   `json:"appreciation"`
	Accessibility int64   `json:"accessibility"`
	Suggestion    int64   `json:"suggestion"`
	AverageRating float64 `json:"average_rating"`
}

// SessionResultsResponse is the read-only results view for a completed session.
type SessionResultsResponse struct {
	SessionID            string                  `json:"session_id"`
	OverallScore         float64                 `json:"overall_score"`
	Tier                 TierResponse            `json:"tier"`
	Metrics              []MetricResponse        `json:"metrics"`
	Badges               []BadgeResponse         `json:"badges"`
	PointsEarned         int                     `json:"points_earned"`
	WeeklyImprovementPct *float64                `json:"weekly_improvement_pct"`
	Feedback             FeedbackSummaryResponse `json:"feedback"`
}

// OwnerPointsResponse reports an owner's accumulated points.
type OwnerPointsResponse struct {
	OwnerID           uint  `json:"owner_id"`
	TotalPoints       int64 `json:"total_points"`
	CompletedSessions int64 `json:"completed_sessions"`
}

// NewMetricResponse converts a MetricScore model into a DTO.
func NewMetricResponse(model models.MetricScore) MetricResponse {
	clips := make([]EvidenceClipResponse, 0, len(model.EvidenceClips))
	for _, clip := range model.EvidenceClips {
		clips = append(clips, EvidenceClipResponse{
			TimestampSeconds: clip.TimestampSeconds,
			Description:      clip.Description,
		})
	}

	return MetricResponse{
		Name:          model.MetricName,
		Score:         model.Score,
		Icon:          models.MetricIcon(model.MetricName),
		Suggestion:    model.Suggestion,
		EvidenceClips: clips,
	}
}

// NewBadgeResponse converts a Badge model into a DTO.
func NewBadgeResponse(model models.Badge) BadgeResponse {
	return BadgeResponse{
		ID:          model.ID,
		Name:        model.Name,
		Icon:        model.Icon,
		Description: model.Description,
		AwardedAt:   model.AwardedAt,
	}
}
