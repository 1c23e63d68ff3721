package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BountyStatus indicates whether a bounty still accepts work
type BountyStatus string

const (
	BountyStatusActive    BountyStatus = "active"
	BountyStatusCompleted BountyStatus = "completed"
)

// BountyCategories is the fixed set of categories a bounty can be posted under.
var BountyCategories = []string{"Sales", "Lead Gen", "Content", "Research", "Data", "Design", "Automation"}

// Bounty is the central ledger document. The counter columns (completed,
// approved, pending_review, hunter_count) are derived state and are only ever
// mutated through SQL-side increments inside a transaction, never by
// read-modify-write in Go. Invariant:
// 0 <= approved + pending_review <= completed <= total, and
// hunter_count == number of claim rows for this bounty.
type Bounty struct {
	ID           string   `gorm:"primaryKey;type:uuid" json:"id"`
	PosterID     string   `gorm:"index;not null" json:"poster_id"`
	PosterName   string   `json:"poster_name,omitempty"` // denormalized from hunter_mirrors
	Title        string   `gorm:"not null" json:"title"`
	Slug         string   `gorm:"index" json:"slug"`
	Description  string   `gorm:"type:text;not null" json:"description"`
	Category     string   `gorm:"index;not null" json:"category"`
	Requirements []string `gorm:"serializer:json" json:"requirements,omitempty"`

	PricePerUnit decimal.Decimal `gorm:"type:numeric;not null" json:"price_per_unit"`
	Total        int             `gorm:"not null" json:"total"`
	TotalBudget  decimal.Decimal `gorm:"type:numeric" json:"total_budget"`

	// Derived counters; see invariant above.
	Completed     int `gorm:"not null;default:0" json:"completed"`
	Approved      int `gorm:"not null;default:0" json:"approved"`
	PendingReview int `gorm:"not null;default:0" json:"pending_review"`
	HunterCount   int `gorm:"not null;default:0" json:"hunter_count"`

	Status        BountyStatus `gorm:"index;not null;default:'active'" json:"status"`
	Deadline      time.Time    `json:"deadline"`
	LastCashoutAt *time.Time   `json:"last_cashout_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime;index"`
}
