package dto

import (
	"time"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// FeedbackCreateRequest describes the payload for submitting student feedback.
type FeedbackCreateRequest struct {
	SessionID  string `json:"session_id" validate:"omitempty,max=36"`
	StudentRef string `json:"student_ref" validate:"required,max=255"`
	Category   string `json:"category" validate:"required,oneof=appreciation accessibility suggestion"`
	Text       string `json:"text" validate:"required,min=3"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// FeedbackItemResponse serializes a stored feedback item.
type FeedbackItemResponse struct {
	ID         uint      `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	StudentRef string    `json:"student_ref"`
	Category   string    `json:"category"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackListResponse pairs the filtered items with the store-wide summary.
type FeedbackListResponse struct {
	Items   []FeedbackItemResponse  `json:"items"`
	Summary FeedbackSummaryResponse `json:"summary"`
}

// NewFeedbackItemResponse converts a FeedbackItem model into a DTO.
func NewFeedbackItemResponse(model models.FeedbackItem) FeedbackItemResponse {
	return FeedbackItemResponse{
		ID:         model.ID,
		SessionID:  model.SessionID,
		StudentRef: model.StudentRef,
		Category:   model.Category,
		Text:       model.Text,
		Rating:     model.Rating,
		CreatedAt:  model.CreatedAt,
	}
}

// NewFeedbackItemResponseSlice converts a slice of models into DTOs.
func NewFeedbackItemResponseSlice(items []models.FeedbackItem) []FeedbackItemResponse {
	responses := make([]FeedbackItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewFeedbackItemResponse(item))
	}
	return responses
}
