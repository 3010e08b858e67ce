package models

import "time"

// PointsLedgerEntry credits points for one completed session. One entry per
// session; an owner's total is the sum over their entries.
type PointsLedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:36;not null;uniqueIndex" json:"session_id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Points    int       `gorm:"not null" json:"points"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
