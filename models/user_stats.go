package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStats is a per-user running-totals record keyed by the gateway user id.
// It is only ever mutated inside the same transaction as the ledger event that
// triggered it (bounty creation, submission approval, cashout); never by a
// background job, so the totals cannot drift from the ledger.
type UserStats struct {
	ID                string          `gorm:"primaryKey" json:"id"` // external user id
	TotalEarned       decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total_earned"`
	TotalSpent        decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total_spent"`
	CompletedBounties int             `gorm:"not null;default:0" json:"completed_bounties"`
	PostedBounties    int             `gorm:"not null;default:0" json:"posted_bounties"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime;index"`
}
