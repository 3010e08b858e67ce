package models

import "time"

// Badge is a named achievement awarded to a session at most once. The
// (session_id, name) unique index makes awarding idempotent at the store
// level, the second line of defence behind the pipeline's per-session lock.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:36;not null;uniqueIndex:idx_badges_session_name" json:"session_id"`
	Name        string    `gorm:"size:64;not null;uniqueIndex:idx_badges_session_name" json:"name"`
	Icon        string    `gorm:"size:16" json:"icon"`
	Description string    `gorm:"type:text" json:"description"`
	AwardedAt   time.Time `gorm:"not null" json:"awarded_at"`
	Session     Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
