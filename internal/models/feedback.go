package models

import "time"

// Feedback categories assigned at creation time by the submitting client.
const (
	FeedbackCategoryAppreciation  = "appreciation"
	FeedbackCategoryAccessibility = "accessibility"
	FeedbackCategorySuggestion    = "suggestion"
)

// FeedbackItem is an append-only student feedback entry. Items are never
// mutated or deleted through normal operation.
type FeedbackItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:36;index" json:"session_id"`
	StudentRef string    `gorm:"size:255;not null" json:"student_ref"`
	Category   string    `gorm:"size:32;not null;index" json:"category"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Rating     int       `gorm:"not null" json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValidFeedbackCategory reports whether category is one of the recognized values.
func IsValidFeedbackCategory(category string) bool {
	switch category {
	case FeedbackCategoryAppreciation, FeedbackCategoryAccessibility, FeedbackCategorySuggestion:
		return true
	}
	return false
}
