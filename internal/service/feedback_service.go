package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/mentorlens/mentorlens-api/internal/dto"
	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/repository"
)

// FeedbackService manages the append-only student feedback store.
type FeedbackService interface {
	Add(ctx context.Context, payload dto.FeedbackCreateRequest) (dto.FeedbackItemResponse, error)
	List(ctx context.Context, category string) (dto.FeedbackListResponse, error)
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(repo repository.FeedbackRepository, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		now:       time.Now,
	}
}

func (s *feedbackService) Add(ctx context.Context, payload dto.FeedbackCreateRequest) (dto.FeedbackItemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackItemResponse{}, err
	}

	if !models.IsValidFeedbackCategory(payload.Category) {
		return dto.FeedbackItemResponse{}, fmt.Errorf("unrecognized feedback category %q: %w", payload.Category, ErrInvalidInput)
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.FeedbackItemResponse{}, fmt.Errorf("feedback text is empty after sanitization: %w", ErrInvalidInput)
	}

	item := models.FeedbackItem{
		SessionID:  payload.SessionID,
		StudentRef: strings.TrimSpace(s.sanitizer.Sanitize(payload.StudentRef)),
		Category:   payload.Category,
		Text:       text,
		Rating:     payload.Rating,
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		return dto.FeedbackItemResponse{}, err
	}

	s.logger.Info().Uint("feedback_id", item.ID).Str("category", item.Category).Msg("feedback recorded")

	return dto.NewFeedbackItemResponse(item), nil
}

// List returns feedback newest first, optionally narrowed to one category.
// The empty string and "all" both mean no filter.
func (s *feedbackService) List(ctx context.Context, category string) (dto.FeedbackListResponse, error) {
	filter := strings.ToLower(strings.TrimSpace(category))
	if filter == "all" {
		filter = ""
	}

	if filter != "" && !models.IsValidFeedbackCategory(filter) {
		return dto.FeedbackListResponse{}, fmt.Errorf("unrecognized feedback category %q: %w", category, ErrInvalidInput)
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.FeedbackListResponse{}, err
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return dto.FeedbackListResponse{}, err
	}

	return dto.FeedbackListResponse{
		Items: dto.NewFeedbackItemResponseSlice(items),
		Summary: dto.FeedbackSummaryResponse{
			Total:         summary.Total,
			Appreciation:  summary.Appreciation,
			Accessibility: summary.Accessibility,
			Suggestion:    summary.Suggestion,
			AverageRating: summary.AverageRating,
		},
	}, nil
}
