package models

import (
	"time"

	"gorm.io/gorm"
)

// HunterMirror is a local snapshot of user data needed to annotate bounties,
// claims and submissions with display names. Owned solely by this service and
// populated by the profile sync worker from the profile service; the ledger
// never writes back to it.
type HunterMirror struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string     `gorm:"index;not null" json:"username"`
	Email             string     `json:"email,omitempty"`
	DisplayName       string     `json:"display_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
