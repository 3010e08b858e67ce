package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/dto"
	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/observability"
	"github.com/mentorlens/mentorlens-api/internal/repository"
	"github.com/mentorlens/mentorlens-api/pkg/analysis"
)

// LeaderboardKey is the redis sorted set holding owner point totals.
const LeaderboardKey = "mentorlens:leaderboard"

// CompletedSubject is the NATS subject for session completion events.
const CompletedSubject = "mentorlens.sessions.completed"

// FileUploader stores an uploaded recording and returns its durable reference.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SessionCompletedEvent is published when a session reaches completed.
type SessionCompletedEvent struct {
	SessionID    string  `json:"session_id"`
	OwnerID      uint    `json:"owner_id"`
	OverallScore float64 `json:"overall_score"`
	Tier         string  `json:"tier"`
	Points       int     `json:"points"`
	Badges       int     `json:"badges"`
}

// EvaluationPipeline orchestrates a session from upload through scoring to
// badge and point derivation.
type EvaluationPipeline interface {
	Submit(ctx context.Context, payload dto.SessionCreateRequest, file *multipart.FileHeader) (dto.SessionStatusResponse, error)
	Advance(ctx context.Context, sessionID string) (dto.SessionStatusResponse, error)
	GetStatus(ctx context.Context, sessionID string) (dto.SessionStatusResponse, error)
	FailStale(ctx context.Context, olderThan time.Time) (int, error)
}

// PipelineOptions tunes pipeline behaviour.
type PipelineOptions struct {
	// AutoAdvance drives submitted sessions through the state machine in the
	// background. Disabled in tests so steps can be asserted individually.
	AutoAdvance bool
}

type evaluationPipeline struct {
	sessions  repository.SessionRepository
	scores    repository.MetricScoreRepository
	badges    repository.BadgeRepository
	points    repository.PointsRepository
	engine    *GamificationEngine
	analyzer  analysis.Analyzer
	uploader  FileUploader
	validator *validator.Validate
	events    *nats.Conn
	cache     *redis.Client
	opts      PipelineOptions
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEvaluationPipeline constructs the pipeline service. The NATS connection
// and redis client are optional; nil disables event publishing and the
// leaderboard respectively.
func NewEvaluationPipeline(
	sessions repository.SessionRepository,
	scores repository.MetricScoreRepository,
	badges repository.BadgeRepository,
	points repository.PointsRepository,
	engine *GamificationEngine,
	analyzer analysis.Analyzer,
	uploader FileUploader,
	validate *validator.Validate,
	events *nats.Conn,
	cache *redis.Client,
	opts PipelineOptions,
	logger zerolog.Logger,
) EvaluationPipeline {
	return &evaluationPipeline{
		sessions:  sessions,
		scores:    scores,
		badges:    badges,
		points:    points,
		engine:    engine,
		analyzer:  analyzer,
		uploader:  uploader,
		validator: validate,
		events:    events,
		cache:     cache,
		opts:      opts,
		logger:    logger.With().Str("component", "evaluation_pipeline").Logger(),
		now:       time.Now,
		locks:     map[string]*sync.Mutex{},
	}
}

func (p *evaluationPipeline) Submit(ctx context.Context, payload dto.SessionCreateRequest, file *multipart.FileHeader) (dto.SessionStatusResponse, error) {
	if payload.AccessibilityMode == "" {
		payload.AccessibilityMode = models.AccessibilityModeNone
	}

	if err := p.validator.Struct(payload); err != nil {
		return dto.SessionStatusResponse{}, err
	}

	if !models.IsValidAccessibilityMode(payload.AccessibilityMode) {
		return dto.SessionStatusResponse{}, fmt.Errorf("unrecognized accessibility mode %q: %w", payload.AccessibilityMode, ErrInvalidInput)
	}

	fileRef := strings.TrimSpace(payload.FileRef)
	if file != nil {
		if err := validateVideoType(file); err != nil {
			return dto.SessionStatusResponse{}, err
		}

		reader, err := file.Open()
		if err != nil {
			return dto.SessionStatusResponse{}, fmt.Errorf("failed to open file: %w", err)
		}
		defer reader.Close()

		fileRef, err = p.uploader.Upload(ctx, file.Filename, reader)
		if err != nil {
			return dto.SessionStatusResponse{}, fmt.Errorf("failed to store recording: %w", err)
		}
	}

	if fileRef == "" {
		return dto.SessionStatusResponse{}, fmt.Errorf("source file reference is required: %w", ErrInvalidInput)
	}

	now := p.now()
	session := models.Session{
		ID:                uuid.NewString(),
		OwnerID:           payload.OwnerID,
		SourceFileRef:     fileRef,
		AccessibilityMode: payload.AccessibilityMode,
		Status:            models.SessionStatusPending,
		StatusChangedAt:   now,
		UploadedAt:        now,
	}

	if err := p.sessions.Create(ctx, &session); err != nil {
		return dto.SessionStatusResponse{}, err
	}

	p.logger.Info().
		Str("session_id", session.ID).
		Uint("owner_id", session.OwnerID).
		Str("accessibility_mode", session.AccessibilityMode).
		Msg("session submitted")

	if p.opts.AutoAdvance {
		go p.runToCompletion(session.ID)
	}

	return dto.NewSessionStatusResponse(session), nil
}

// runToCompletion drives one session through the state machine on its own
// goroutine. Other sessions are untouched; the per-session lock inside
// Advance is the only synchronization.
func (p *evaluationPipeline) runToCompletion(sessionID string) {
	ctx := context.Background()
	for {
		status, err := p.Advance(ctx, sessionID)
		if err != nil {
			p.logger.Error().Err(err).Str("session_id", sessionID).Msg("pipeline advancement stopped")
			return
		}
		if status.Status == models.SessionStatusCompleted || status.Status == models.SessionStatusFailed {
			return
		}
	}
}

// Advance drives the session's state machine one step. It is idempotent: a
// terminal or already-advanced session is returned unchanged. Calls for the
// same session are serialized; different sessions proceed in parallel.
func (p *evaluationPipeline) Advance(ctx context.Context, sessionID string) (dto.SessionStatusResponse, error) {
	tracer := otel.Tracer("github.com/mentorlens/mentorlens-api/internal/service/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.advance")
	span.SetAttributes(attribute.String("session_id", sessionID))
	defer span.End()

	unlock := p.lockSession(sessionID)
	defer unlock()

	session, err := p.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "session_not_found")
			return dto.SessionStatusResponse{}, ErrSessionNotFound
		}
		span.RecordError(err)
		return dto.SessionStatusResponse{}, err
	}

	span.SetAttributes(attribute.String("status", session.Status))

	switch session.Status {
	case models.SessionStatusPending:
		err = p.acceptForScoring(ctx, &session)
	case models.SessionStatusProcessing:
		err = p.runAnalysis(ctx, &session)
	case models.SessionStatusScored:
		err = p.deriveAchievements(ctx, &session)
	case models.SessionStatusCompleted, models.SessionStatusFailed:
		// Terminal; nothing to do.
	default:
		err = fmt.Errorf("session %s has unknown status %q", session.ID, session.Status)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step_failed")
		return dto.SessionStatusResponse{}, err
	}

	return dto.NewSessionStatusResponse(session), nil
}

func (p *evaluationPipeline) GetStatus(ctx context.Context, sessionID string) (dto.SessionStatusResponse, error) {
	session, err := p.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionStatusResponse{}, ErrSessionNotFound
		}
		return dto.SessionStatusResponse{}, err
	}

	return dto.NewSessionStatusResponse(session), nil
}

// acceptForScoring hands the session to the scoring adapter: pending -> processing.
func (p *evaluationPipeline) acceptForScoring(ctx context.Context, session *models.Session) error {
	if err := p.transition(ctx, session, models.SessionStatusProcessing, ""); err != nil {
		observability.PipelineSteps().WithLabelValues("accept", "error").Inc()
		return err
	}

	observability.PipelineSteps().WithLabelValues("accept", "ok").Inc()
	return nil
}

// runAnalysis awaits the analysis engine and persists the metric scores:
// processing -> scored, or -> failed on an unrecoverable adapter error.
func (p *evaluationPipeline) runAnalysis(ctx context.Context, session *models.Session) error {
	results, err := p.analyzer.Evaluate(ctx, analysis.Input{
		SessionID:         session.ID,
		FileRef:           session.SourceFileRef,
		AccessibilityMode: session.AccessibilityMode,
	})
	if err != nil {
		observability.PipelineSteps().WithLabelValues("analyze", "error").Inc()
		reason := err.Error()
		if failErr := p.transition(ctx, session, models.SessionStatusFailed, reason); failErr != nil {
			return failErr
		}

		p.logger.Warn().Err(err).Str("session_id", session.ID).Msg("analysis failed, session marked failed")

		switch {
		case errors.Is(err, analysis.ErrUnsupportedMedia):
			return fmt.Errorf("%s: %w", reason, ErrUnsupportedMedia)
		default:
			return fmt.Errorf("%s: %w", reason, ErrAnalysisUnavailable)
		}
	}

	scores := make([]models.MetricScore, 0, len(results))
	for _, result := range results {
		clips := make([]models.EvidenceClip, 0, len(result.Evidence))
		for _, clip := range result.Evidence {
			clips = append(clips, models.EvidenceClip{
				TimestampSeconds: clip.TimestampSeconds,
				Description:      clip.Description,
			})
		}

		scores = append(scores, models.MetricScore{
			SessionID:     session.ID,
			MetricName:    result.Name,
			Score:         result.Score,
			Suggestion:    result.Suggestion,
			EvidenceClips: clips,
		})
	}

	if err := p.scores.CreateBatch(ctx, scores); err != nil {
		observability.PipelineSteps().WithLabelValues("analyze", "error").Inc()
		return err
	}

	if err := p.transition(ctx, session, models.SessionStatusScored, ""); err != nil {
		observability.PipelineSteps().WithLabelValues("analyze", "error").Inc()
		return err
	}

	observability.PipelineSteps().WithLabelValues("analyze", "ok").Inc()
	return nil
}

// deriveAchievements awards badges and credits points: scored -> completed.
// This is the critical section the per-session lock protects; the
// (session_id, name) and (session_id) uniqueness constraints make a replay
// harmless even so.
func (p *evaluationPipeline) deriveAchievements(ctx context.Context, session *models.Session) error {
	scores, err := p.scores.ListBySession(ctx, session.ID)
	if err != nil {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return err
	}

	if len(scores) < len(models.MetricNames) {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return fmt.Errorf("session %s has %d of %d metric scores: %w", session.ID, len(scores), len(models.MetricNames), ErrNotReady)
	}

	completedBefore, err := p.sessions.CountCompletedByOwner(ctx, session.OwnerID)
	if err != nil {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return err
	}

	now := p.now()
	badges := p.engine.DeriveBadges(session.ID, scores, completedBefore == 0, now)
	if err := p.badges.AwardBatch(ctx, badges); err != nil {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return err
	}

	earned := p.engine.DerivePoints(scores)
	entry := models.PointsLedgerEntry{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Points:    earned,
		Reason:    "session evaluation completed",
	}
	if err := p.points.Credit(ctx, &entry); err != nil {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return err
	}

	if err := p.transition(ctx, session, models.SessionStatusCompleted, ""); err != nil {
		observability.PipelineSteps().WithLabelValues("gamify", "error").Inc()
		return err
	}

	overall := MeanScore(scores)
	p.recordLeaderboard(ctx, session.OwnerID, earned)
	p.publishCompleted(SessionCompletedEvent{
		SessionID:    session.ID,
		OwnerID:      session.OwnerID,
		OverallScore: overall,
		Tier:         ClassifyOverall(overall).Name,
		Points:       earned,
		Badges:       len(badges),
	})

	observability.PipelineSteps().WithLabelValues("gamify", "ok").Inc()
	p.logger.Info().
		Str("session_id", session.ID).
		Int("points", earned).
		Int("badges", len(badges)).
		Float64("overall", overall).
		Msg("session completed")

	return nil
}

// FailStale marks processing sessions whose last state change predates
// olderThan as failed. A session that advanced between the listing and the
// lock is left alone. Returns the number of sessions failed.
func (p *evaluationPipeline) FailStale(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := p.sessions.ListStaleProcessing(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, candidate := range stale {
		unlock := p.lockSession(candidate.ID)

		session, err := p.sessions.GetByID(ctx, candidate.ID)
		if err != nil {
			unlock()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return failed, err
		}

		if session.Status != models.SessionStatusProcessing || session.StatusChangedAt.After(olderThan) {
			unlock()
			continue
		}

		if err := p.transition(ctx, &session, models.SessionStatusFailed, "analysis timed out"); err != nil {
			unlock()
			return failed, err
		}
		unlock()

		failed++
		observability.PipelineSteps().WithLabelValues("watchdog", "failed").Inc()
		p.logger.Warn().Str("session_id", session.ID).Msg("stale processing session marked failed")
	}

	return failed, nil
}

// transition commits a single state change so a crash between steps leaves
// the session at the last fully-committed state.
func (p *evaluationPipeline) transition(ctx context.Context, session *models.Session, status, failureReason string) error {
	session.Status = status
	session.FailureReason = failureReason
	session.StatusChangedAt = p.now()

	return p.sessions.Update(ctx, session)
}

func (p *evaluationPipeline) recordLeaderboard(ctx context.Context, ownerID uint, earned int) {
	if p.cache == nil {
		return
	}

	member := fmt.Sprintf("%d", ownerID)
	if err := p.cache.ZIncrBy(ctx, LeaderboardKey, float64(earned), member).Err(); err != nil {
		p.logger.Warn().Err(err).Uint("owner_id", ownerID).Msg("failed to update leaderboard")
	}

	cacheKey := fmt.Sprintf("points:owner:%d", ownerID)
	if err := p.cache.Del(ctx, cacheKey).Err(); err != nil {
		p.logger.Warn().Err(err).Uint("owner_id", ownerID).Msg("failed to invalidate points cache")
	}
}

func (p *evaluationPipeline) publishCompleted(event SessionCompletedEvent) {
	if p.events == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to encode completion event")
		return
	}

	if err := p.events.Publish(CompletedSubject, payload); err != nil {
		p.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to publish completion event")
	}
}

// lockSession serializes pipeline steps per session id. A waiter that
// arrives after the session turned terminal only performs a no-op step.
func (p *evaluationPipeline) lockSession(sessionID string) func() {
	p.mu.Lock()
	lock, ok := p.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[sessionID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func validateVideoType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	if !strings.HasPrefix(mime.String(), "video/") {
		return fmt.Errorf("%s is not a video format: %w", mime.String(), ErrUnsupportedMedia)
	}

	return nil
}
