// services/submission_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bounty-market-system/models"
	"bounty-market-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionService runs the pending -> approved | rejected state machine and
// keeps the parent bounty's counters and the hunter's aggregates in lockstep
// with every transition. Every mutation here is a single transaction: either
// the submission row and all counter adjustments apply, or none do.
type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// SubmitWork creates a pending submission and reserves one unit on the bounty
// (completed+1, pending_review+1). The reservation is a guarded increment so
// completed can never pass total, no matter how many hunters submit at once.
// A missing claim is created in the same transaction; re-claiming is
// tolerated everywhere else, so submit-without-claim just becomes a claim.
func (s *SubmissionService) SubmitWork(bountyID, hunterID, proof, proofLink string) (*models.Submission, error) {
	if hunterID == "" {
		return nil, &NotAuthenticatedError{}
	}
	if strings.TrimSpace(proof) == "" {
		return nil, &ValidationError{Msg: "proof is required"}
	}

	var submission *models.Submission
	err := runInTx(s.DB, func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "bounty", ID: bountyID}
			}
			return err
		}
		if bounty.Status != models.BountyStatusActive {
			return &InvalidStateError{Msg: "bounty is no longer active"}
		}

		// Reserve the unit. The completed < total guard is what upholds the
		// counter invariant under concurrent submits.
		res := tx.Model(&models.Bounty{}).
			Where("id = ? AND status = ? AND completed < total", bountyID, models.BountyStatusActive).
			Updates(map[string]interface{}{
				"completed":      gorm.Expr("completed + 1"),
				"pending_review": gorm.Expr("pending_review + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InvalidStateError{Msg: "bounty has no units left to submit against"}
		}

		// Make sure the hunter holds a claim (idempotent).
		claim := models.Claim{
			ID:         uuid.NewString(),
			BountyID:   bountyID,
			HunterID:   hunterID,
			HunterName: displayName(tx, hunterID),
			Status:     models.ClaimStatusActive,
		}
		claimRes := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bounty_id"}, {Name: "hunter_id"}},
			DoNothing: true,
		}).Create(&claim)
		if claimRes.Error != nil {
			return claimRes.Error
		}
		if claimRes.RowsAffected == 1 {
			if err := tx.Model(&models.Bounty{}).
				Where("id = ?", bountyID).
				Update("hunter_count", gorm.Expr("hunter_count + 1")).Error; err != nil {
				return err
			}
		}

		submission = &models.Submission{
			ID:         uuid.NewString(),
			BountyID:   bountyID,
			HunterID:   hunterID,
			HunterName: claim.HunterName,
			Proof:      proof,
			ProofLink:  proofLink,
			Status:     models.SubmissionStatusPending,
		}
		return tx.Create(submission).Error
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// ApproveSubmission transitions pending -> approved. Same transaction:
// bounty pending_review-1 / approved+1, hunter total_earned += price_per_unit
// and completed_bounties += 1. Only the bounty's poster may approve.
// Re-deciding an already-decided submission fails with InvalidStateError,
// never a double payout.
func (s *SubmissionService) ApproveSubmission(submissionID, actorID string) (*models.Submission, error) {
	return s.decideSubmission(submissionID, actorID, models.SubmissionStatusApproved)
}

// RejectSubmission transitions pending -> rejected and returns the reserved
// unit to the pool: bounty pending_review-1 / completed-1. Hunter stats are
// untouched. A rejected unit no longer counts as completed.
func (s *SubmissionService) RejectSubmission(submissionID, actorID string) (*models.Submission, error) {
	return s.decideSubmission(submissionID, actorID, models.SubmissionStatusRejected)
}

func (s *SubmissionService) decideSubmission(submissionID, actorID string, decision models.SubmissionStatus) (*models.Submission, error) {
	if actorID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var submission models.Submission
	err := runInTx(s.DB, func(tx *gorm.DB) error {
		if err := tx.First(&submission, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "submission", ID: submissionID}
			}
			return err
		}

		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", submission.BountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "bounty", ID: submission.BountyID}
			}
			return err
		}
		if bounty.PosterID != actorID {
			return &NotAuthorizedError{Msg: "only the bounty poster may decide submissions"}
		}

		// Conditional transition: the WHERE status='pending' guard is the
		// at-most-once effect. A concurrent or repeated decision sees zero
		// rows and stops here.
		now := time.Now()
		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", submissionID, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":     decision,
				"decided_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InvalidStateError{Msg: "submission already decided"}
		}

		adjustments := map[string]interface{}{
			"pending_review": gorm.Expr("pending_review - 1"),
			"approved":       gorm.Expr("approved + 1"),
		}
		if decision == models.SubmissionStatusRejected {
			adjustments = map[string]interface{}{
				"pending_review": gorm.Expr("pending_review - 1"),
				"completed":      gorm.Expr("completed - 1"),
			}
		}
		counterRes := tx.Model(&models.Bounty{}).
			Where("id = ? AND pending_review > 0", bounty.ID).
			Updates(adjustments)
		if counterRes.Error != nil {
			return counterRes.Error
		}
		if counterRes.RowsAffected == 0 {
			// Each pending submission accounts for exactly one pending_review
			// unit, so this can't happen unless the ledger is already broken.
			return fmt.Errorf("counter mismatch on bounty %s: pending_review at zero with pending submission", bounty.ID)
		}

		if decision == models.SubmissionStatusApproved {
			if err := ensureStats(tx, submission.HunterID); err != nil {
				return err
			}
			if err := tx.Model(&models.UserStats{}).
				Where("id = ?", submission.HunterID).
				Updates(map[string]interface{}{
					"total_earned":       gorm.Expr("total_earned + ?", bounty.PricePerUnit),
					"completed_bounties": gorm.Expr("completed_bounties + 1"),
				}).Error; err != nil {
				return err
			}
		}

		submission.Status = decision
		submission.DecidedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// PendingReviewItem is a pending submission annotated with its parent bounty.
type PendingReviewItem struct {
	models.Submission
	BountyTitle  string          `json:"bounty_title"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// PendingReviewQueue returns all pending submissions across the poster's
// bounties, oldest first.
func (s *SubmissionService) PendingReviewQueue(posterID string) ([]PendingReviewItem, error) {
	if posterID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var items []PendingReviewItem
	err := s.DB.Model(&models.Submission{}).
		Select("submissions.*, bounties.title AS bounty_title, bounties.price_per_unit AS price_per_unit").
		Joins("JOIN bounties ON bounties.id = submissions.bounty_id").
		Where("bounties.poster_id = ? AND submissions.status = ?", posterID, models.SubmissionStatusPending).
		Order("submissions.submitted_at ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListSubmissions returns submissions filtered by bounty and/or hunter,
// newest first.
func (s *SubmissionService) ListSubmissions(bountyID, hunterID string) ([]models.Submission, error) {
	query := s.DB.Model(&models.Submission{})
	if bountyID != "" {
		query = query.Where("bounty_id = ?", bountyID)
	}
	if hunterID != "" {
		query = query.Where("hunter_id = ?", hunterID)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// --- Fiber handlers ---

// SubmitWorkEndpoint handles POST /bounties/:id/submissions. Accepts JSON, or
// multipart with an optional proof_file that is uploaded to R2 (falling back
// to local uploads/ storage) to produce proof_link.
func (s *SubmissionService) SubmitWorkEndpoint(c *fiber.Ctx) error {
	hunterID, _ := c.Locals("user_id").(string)
	bountyID := c.Params("id")

	var proof, proofLink string
	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		proof = c.FormValue("proof")
		proofLink = c.FormValue("proof_link")

		if fileHeader, err := c.FormFile("proof_file"); err == nil {
			key := utils.ProofObjectKey(bountyID, fileHeader.Filename)
			if utils.R2Enabled() {
				url, upErr := utils.UploadProofToR2(fileHeader, key)
				if upErr != nil {
					log.Printf("❌ Proof upload to R2 failed for bounty %s: %v", bountyID, upErr)
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store proof file"})
				}
				proofLink = url
			} else {
				dest := utils.GetUploadPath(key)
				if upErr := utils.SaveFile(fileHeader, dest); upErr != nil {
					log.Printf("❌ Local proof save failed for bounty %s: %v", bountyID, upErr)
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store proof file"})
				}
				proofLink = "/uploads/" + key
			}
		}
	} else {
		var req struct {
			Proof     string `json:"proof"`
			ProofLink string `json:"proof_link"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		proof = req.Proof
		proofLink = req.ProofLink
	}

	submission, err := s.SubmitWork(bountyID, hunterID, proof, proofLink)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("📬 Submission %s on bounty %s by hunter %s", submission.ID, bountyID, hunterID)
	return c.Status(fiber.StatusCreated).JSON(submission)
}

// ApproveSubmissionEndpoint handles POST /submissions/:id/approve.
func (s *SubmissionService) ApproveSubmissionEndpoint(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)

	submission, err := s.ApproveSubmission(c.Params("id"), actorID)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("✅ Submission %s approved by %s", submission.ID, actorID)
	return c.JSON(submission)
}

// RejectSubmissionEndpoint handles POST /submissions/:id/reject.
func (s *SubmissionService) RejectSubmissionEndpoint(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)

	submission, err := s.RejectSubmission(c.Params("id"), actorID)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("🚫 Submission %s rejected by %s", submission.ID, actorID)
	return c.JSON(submission)
}

// PendingReviewQueueEndpoint handles GET /user/review-queue.
func (s *SubmissionService) PendingReviewQueueEndpoint(c *fiber.Ctx) error {
	posterID, _ := c.Locals("user_id").(string)

	items, err := s.PendingReviewQueue(posterID)
	if err != nil {
		log.Printf("DB Error fetching review queue for %s: %v", posterID, err)
		return WriteError(c, err)
	}
	return c.JSON(items)
}

// ListSubmissionsEndpoint handles GET /bounties/:id/submissions. Hunters see
// their own submissions; the bounty's poster sees all of them.
func (s *SubmissionService) ListSubmissionsEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	bountyID := c.Params("id")

	var bounty models.Bounty
	if err := s.DB.First(&bounty, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WriteError(c, &NotFoundError{Resource: "bounty", ID: bountyID})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	hunterFilter := userID
	if bounty.PosterID == userID {
		hunterFilter = ""
	}

	submissions, err := s.ListSubmissions(bountyID, hunterFilter)
	if err != nil {
		log.Printf("DB Error listing submissions for bounty %s: %v", bountyID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch submissions"})
	}
	return c.JSON(submissions)
}
