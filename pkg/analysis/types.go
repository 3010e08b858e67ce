// Package analysis is the boundary to the external video-analysis engine.
// The engine itself is opaque; this package only shapes its input and output.
package analysis

import (
	"context"
	"errors"
)

// ErrUnavailable marks a transient upstream failure. The caller may retry by
// submitting a fresh session.
var ErrUnavailable = errors.New("analysis engine unavailable")

// ErrUnsupportedMedia marks a permanent upstream rejection of the source file.
var ErrUnsupportedMedia = errors.New("unsupported media")

// EvidenceClip is a timestamped excerpt the engine cites for a score.
type EvidenceClip struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Description      string  `json:"description"`
}

// MetricResult is one scored dimension of a session.
type MetricResult struct {
	Name       string         `json:"name"`
	Score      float64        `json:"score"`
	Suggestion string         `json:"suggestion"`
	Evidence   []EvidenceClip `json:"evidence"`
}

// Input describes one evaluation request.
type Input struct {
	SessionID         string
	FileRef           string
	AccessibilityMode string
}

// Analyzer evaluates a session recording and returns exactly one result per
// canonical metric. Implementations may take seconds to minutes.
type Analyzer interface {
	Evaluate(ctx context.Context, input Input) ([]MetricResult, error)
}
