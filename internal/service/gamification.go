package service

import (
	"fmt"
	"math"
	"time"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// Default tunables for the gamification formulas.
const (
	DefaultBadgeThreshold = 0.8
	DefaultPointsScalar   = 300
)

// Tier is the qualitative label bucket derived from an overall score.
type Tier struct {
	Name    string
	Emoji   string
	Title   string
	Message string
}

// tierBands maps overall scores to tiers, ordered by descending lower bound.
// Bands are inclusive-lower/exclusive-upper except the top band, which is
// closed at 1.0. The first band whose lower bound the score reaches wins.
var tierBands = []struct {
	lower float64
	tier  Tier
}{
	{0.9, Tier{Name: "Outstanding", Emoji: "🌟", Title: "Outstanding Performance!", Message: "You're truly exceptional! Keep inspiring students with your amazing teaching skills."}},
	{0.8, Tier{Name: "Great", Emoji: "🎉", Title: "Great Job!", Message: "Excellent work! Your students are lucky to have such a dedicated mentor. You're just steps away from perfection!"}},
	{0.7, Tier{Name: "WellDone", Emoji: "👏", Title: "Well Done!", Message: "Good performance! You're making a real impact. Check the suggestions below to reach the next level!"}},
	{0.6, Tier{Name: "KeepGoing", Emoji: "💪", Title: "Keep Going!", Message: "You're on the right track! Every mentor has room to grow. Review the feedback and keep improving!"}},
	{0.0, Tier{Name: "GreatStart", Emoji: "🌱", Title: "Great Start!", Message: "Every expert was once a beginner! Use the personalized suggestions below to enhance your skills. You've got this!"}},
}

// ClassifyOverall resolves the tier for an overall score.
func ClassifyOverall(overall float64) Tier {
	for _, band := range tierBands {
		if overall >= band.lower {
			return band.tier
		}
	}
	return tierBands[len(tierBands)-1].tier
}

// MeanScore returns the arithmetic mean of the metric scores, 0 when empty.
func MeanScore(scores []models.MetricScore) float64 {
	if len(scores) == 0 {
		return 0
	}

	var sum float64
	for _, score := range scores {
		sum += score.Score
	}

	return sum / float64(len(scores))
}

// GamificationConfig tunes the badge and points formulas.
type GamificationConfig struct {
	BadgeThreshold float64
	PointsScalar   int
}

// GamificationEngine derives badges and points from metric scores. It is pure
// and performs no I/O; persistence is the pipeline's concern.
type GamificationEngine struct {
	cfg GamificationConfig
}

// NewGamificationEngine constructs an engine, applying defaults for zero values.
func NewGamificationEngine(cfg GamificationConfig) *GamificationEngine {
	if cfg.BadgeThreshold <= 0 {
		cfg.BadgeThreshold = DefaultBadgeThreshold
	}
	if cfg.PointsScalar <= 0 {
		cfg.PointsScalar = DefaultPointsScalar
	}

	return &GamificationEngine{cfg: cfg}
}

// DeriveBadges returns one "<Metric> Master" badge per metric at or above the
// threshold, plus the one-time "Rising Star" badge for the owner's first
// completed session. Names are unique per session, so persisting the result
// twice never duplicates an award.
func (e *GamificationEngine) DeriveBadges(sessionID string, scores []models.MetricScore, firstCompleted bool, awardedAt time.Time) []models.Badge {
	badges := make([]models.Badge, 0, len(scores)+1)
	for _, score := range scores {
		if score.Score < e.cfg.BadgeThreshold {
			continue
		}

		badges = append(badges, models.Badge{
			SessionID:   sessionID,
			Name:        score.MetricName + " Master",
			Icon:        models.MetricIcon(score.MetricName),
			Description: fmt.Sprintf("Scored %.1f+ in %s", e.cfg.BadgeThreshold, score.MetricName),
			AwardedAt:   awardedAt,
		})
	}

	if firstCompleted {
		badges = append(badges, models.Badge{
			SessionID:   sessionID,
			Name:        "Rising Star",
			Icon:        "⭐",
			Description: "First evaluation completed",
			AwardedAt:   awardedAt,
		})
	}

	return badges
}

// DerivePoints maps the mean metric score onto the points scale:
// round(mean * scalar), clamped to [0, scalar].
func (e *GamificationEngine) DerivePoints(scores []models.MetricScore) int {
	points := int(math.Round(MeanScore(scores) * float64(e.cfg.PointsScalar)))
	if points < 0 {
		return 0
	}
	if points > e.cfg.PointsScalar {
		return e.cfg.PointsScalar
	}

	return points
}
