package models

import "time"

// Accessibility modes bias which evidence the analysis engine emphasises.
// They never change the set of canonical metrics.
const (
	AccessibilityModeNone  = "none"
	AccessibilityModeDeaf  = "deaf"
	AccessibilityModeBlind = "blind"
	AccessibilityModeEasy  = "easy"
	AccessibilityModeAll   = "all"
)

// Session lifecycle states.
const (
	SessionStatusPending    = "pending"
	SessionStatusProcessing = "processing"
	SessionStatusScored     = "scored"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// Session represents one uploaded mentoring video and its evaluation lifecycle.
// The ID is the sole join key for every derived entity.
type Session struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID           uint      `gorm:"not null;index" json:"owner_id"`
	SourceFileRef     string    `gorm:"size:512;not null" json:"source_file_ref"`
	AccessibilityMode string    `gorm:"size:16;not null;default:none" json:"accessibility_mode"`
	Status            string    `gorm:"size:16;not null;index" json:"status"`
	FailureReason     string    `gorm:"type:text" json:"failure_reason,omitempty"`
	StatusChangedAt   time.Time `gorm:"not null" json:"status_changed_at"`
	UploadedAt        time.Time `gorm:"not null" json:"uploaded_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsValidAccessibilityMode reports whether mode is one of the recognized values.
func IsValidAccessibilityMode(mode string) bool {
	switch mode {
	case AccessibilityModeNone, AccessibilityModeDeaf, AccessibilityModeBlind, AccessibilityModeEasy, AccessibilityModeAll:
		return true
	}
	return false
}

// IsTerminal reports whether the session can no longer change state.
func (s Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}

// IsCompleted reports whether the evaluation finished successfully.
func (s Session) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}
