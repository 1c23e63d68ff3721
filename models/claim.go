package models

import "time"

// ClaimStatus has a single value today; the column
// is kept so revoking a claim later doesn't need a schema change.
type ClaimStatus string

const (
	ClaimStatusActive ClaimStatus = "active"
)

// Claim = a hunter has joined a bounty and may submit work against it.
// The unique (bounty_id, hunter_id) index is what makes claiming idempotent:
// a second claim by the same hunter is an ON CONFLICT no-op and must not
// bump the bounty's hunter_count again.
type Claim struct {
	ID         string      `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID   string      `gorm:"uniqueIndex:idx_claims_bounty_hunter;not null" json:"bounty_id"`
	HunterID   string      `gorm:"uniqueIndex:idx_claims_bounty_hunter;index;not null" json:"hunter_id"`
	HunterName string      `json:"hunter_name,omitempty"` // denormalized from hunter_mirrors
	Status     ClaimStatus `gorm:"not null;default:'active'" json:"status"`
	ClaimedAt  time.Time   `json:"claimed_at" gorm:"autoCreateTime"`
}
