package models

import "time"

// SubmissionStatus is the submission state machine:
// pending -> approved | rejected, both terminal.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is one unit of delivered work awaiting the poster's decision.
// Each transition maps to exactly one counter adjustment on the parent bounty:
// create => completed+1, pending_review+1; approve => pending_review-1,
// approved+1; reject => pending_review-1, completed-1.
type Submission struct {
	ID         string           `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID   string           `gorm:"index;not null" json:"bounty_id"`
	HunterID   string           `gorm:"index;not null" json:"hunter_id"`
	HunterName string           `json:"hunter_name,omitempty"` // denormalized from hunter_mirrors
	Proof      string           `gorm:"type:text;not null" json:"proof"`
	ProofLink  string           `gorm:"type:text" json:"proof_link,omitempty"`
	Status     SubmissionStatus `gorm:"index;not null;default:'pending'" json:"status"`
	SubmittedAt time.Time       `json:"submitted_at" gorm:"autoCreateTime;index"`
	DecidedAt  *time.Time       `json:"decided_at,omitempty"`
}
