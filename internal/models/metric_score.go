package models

import (
	"time"

	"gorm.io/datatypes"
)

// The five fixed evaluation dimensions.
const (
	MetricClarity        = "Clarity"
	MetricEngagement     = "Engagement"
	MetricFiller         = "Filler"
	MetricPace           = "Pace"
	MetricTechnicalDepth = "Technical Depth"
)

// MetricNames lists the canonical metrics in display order. A session is
// complete only when it holds exactly one score per entry.
var MetricNames = []string{
	MetricClarity,
	MetricEngagement,
	MetricFiller,
	MetricPace,
	MetricTechnicalDepth,
}

// EvidenceClip is a timestamped excerpt justifying a metric score.
type EvidenceClip struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Description      string  `json:"description"`
}

// MetricScore holds one metric result for a session. Scores are written
// exactly once; corrections require a new session, never an update.
type MetricScore struct {
	ID            uint                              `gorm:"primaryKey" json:"id"`
	SessionID     string                            `gorm:"size:36;not null;uniqueIndex:idx_metric_scores_session_metric" json:"session_id"`
	MetricName    string                            `gorm:"size:32;not null;uniqueIndex:idx_metric_scores_session_metric" json:"metric_name"`
	Score         float64                           `gorm:"not null" json:"score"`
	Suggestion    string                            `gorm:"type:text" json:"suggestion"`
	EvidenceClips datatypes.JSONSlice[EvidenceClip] `json:"evidence_clips"`
	CreatedAt     time.Time                         `json:"created_at"`
	Session       Session                           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// MetricIcon returns the display icon for a canonical metric name.
func MetricIcon(name string) string {
	switch name {
	case MetricClarity:
		return "🎯"
	case MetricEngagement:
		return "💡"
	case MetricFiller:
		return "💬"
	case MetricPace:
		return "⏱️"
	case MetricTechnicalDepth:
		return "🔬"
	}
	return ""
}
