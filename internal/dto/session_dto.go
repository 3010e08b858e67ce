package dto

import (
	"time"

	"github.com/mentorlens/mentorlens-api/internal/models"
)

// SessionCreateRequest describes the multipart payload for a session upload.
// FileRef is honoured when the recording is already stored and no file part
// accompanies the request.
type SessionCreateRequest struct {
	OwnerID           uint   `form:"owner_id" validate:"required,gt=0"`
	AccessibilityMode string `form:"accessibility_mode" validate:"omitempty,oneof=none deaf blind easy all"`
	FileRef           string `form:"file_ref" validate:"omitempty,max=512"`
}

// SessionStatusResponse reports the lifecycle state of a session.
type SessionStatusResponse struct {
	ID                string    `json:"id"`
	OwnerID           uint      `json:"owner_id"`
	Status            string    `json:"status"`
	AccessibilityMode string    `json:"accessibility_mode"`
	SourceFileRef     string    `json:"source_file_ref"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	StatusChangedAt   time.Time `json:"status_changed_at"`
	UploadedAt        time.Time `json:"uploaded_at"`
}

// NewSessionStatusResponse converts a Session model into a DTO.
func NewSessionStatusResponse(model models.Session) SessionStatusResponse {
	return SessionStatusResponse{
		ID:                model.ID,
		OwnerID:           model.OwnerID,
		Status:            model.Status,
		AccessibilityMode: model.AccessibilityMode,
		SourceFileRef:     model.SourceFileRef,
		FailureReason:     model.FailureReason,
		StatusChangedAt:   model.StatusChangedAt,
		UploadedAt:        model.UploadedAt,
	}
}
