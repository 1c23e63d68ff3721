package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cashout is an immutable settlement record: a point-in-time payout of all
// approved-but-unsettled units on a bounty. It is append-only audit history,
// never updated or deleted after creation.
type Cashout struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID      string          `gorm:"index;not null" json:"bounty_id"`
	PosterID      string          `gorm:"index;not null" json:"poster_id"`
	ApprovedCount int             `gorm:"not null" json:"approved_count"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	PlatformFee   decimal.Decimal `gorm:"type:numeric;not null" json:"platform_fee"`
	NetAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"net_amount"`
	CashedOutAt   time.Time       `json:"cashed_out_at" gorm:"autoCreateTime;index"`
}
