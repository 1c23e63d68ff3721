// services/bounty_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bounty-market-system/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BountyService owns bounty documents, their lifecycle status and the claim
// set. All counter updates go through SQL-side increments inside transactions.
type BountyService struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewBountyService(db *gorm.DB) *BountyService {
	return &BountyService{DB: db, validate: validator.New()}
}

// CreateBountyRequest is the strict boundary schema for bounty creation,
// rejected before any transaction begins.
type CreateBountyRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"required"`
	Category     string          `json:"category" validate:"required,oneof=Sales 'Lead Gen' Content Research Data Design Automation"`
	Requirements []string        `json:"requirements"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Total        int             `json:"total"`
	Deadline     time.Time       `json:"deadline"`
}

// BountyFilter narrows ListBounties. Zero values mean "no filter".
type BountyFilter struct {
	Status   models.BountyStatus
	Category string
	PosterID string
}

// CreateBounty validates the request, then atomically persists the bounty
// together with the poster's posted_bounties increment.
func (s *BountyService) CreateBounty(posterID string, req CreateBountyRequest) (*models.Bounty, error) {
	if posterID == "" {
		return nil, &NotAuthenticatedError{}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid bounty: %v", err)}
	}
	if !req.PricePerUnit.IsPositive() {
		return nil, &ValidationError{Msg: "price_per_unit must be greater than zero"}
	}
	if req.Total <= 0 {
		return nil, &ValidationError{Msg: "total must be greater than zero"}
	}
	if !req.Deadline.After(time.Now()) {
		return nil, &ValidationError{Msg: "deadline must be in the future"}
	}

	bounty := &models.Bounty{
		ID:           uuid.NewString(),
		PosterID:     posterID,
		PosterName:   displayName(s.DB, posterID),
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Category:     req.Category,
		Requirements: req.Requirements,
		PricePerUnit: req.PricePerUnit,
		Total:        req.Total,
		TotalBudget:  req.PricePerUnit.Mul(decimal.NewFromInt(int64(req.Total))),
		Status:       models.BountyStatusActive,
		Deadline:     req.Deadline,
	}

	err := runInTx(s.DB, func(tx *gorm.DB) error {
		if err := tx.Create(bounty).Error; err != nil {
			return err
		}
		if err := ensureStats(tx, posterID); err != nil {
			return err
		}
		return tx.Model(&models.UserStats{}).
			Where("id = ?", posterID).
			Update("posted_bounties", gorm.Expr("posted_bounties + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return bounty, nil
}

// ListBounties is the read-only query behind both the REST list and the SSE
// snapshot stream.
func (s *BountyService) ListBounties(filter BountyFilter) ([]models.Bounty, error) {
	query := s.DB.Model(&models.Bounty{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" && filter.Category != "All" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PosterID != "" {
		query = query.Where("poster_id = ?", filter.PosterID)
	}

	var bounties []models.Bounty
	if err := query.Order("created_at DESC").Find(&bounties).Error; err != nil {
		return nil, err
	}
	return bounties, nil
}

// GetBounty loads a single bounty.
func (s *BountyService) GetBounty(bountyID string) (*models.Bounty, error) {
	var bounty models.Bounty
	if err := s.DB.First(&bounty, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "bounty", ID: bountyID}
		}
		return nil, err
	}
	return &bounty, nil
}

// ClaimBounty is the idempotent join: insert into claims, and bump
// hunter_count only when the insert actually landed. Re-claiming succeeds
// without error and without double-incrementing.
func (s *BountyService) ClaimBounty(bountyID, hunterID string) (*models.Claim, error) {
	if hunterID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var claim models.Claim
	err := runInTx(s.DB, func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "bounty", ID: bountyID}
			}
			return err
		}
		if bounty.Status != models.BountyStatusActive {
			return &NotFoundError{Resource: "active bounty", ID: bountyID}
		}

		claim = models.Claim{
			ID:         uuid.NewString(),
			BountyID:   bountyID,
			HunterID:   hunterID,
			HunterName: displayName(tx, hunterID),
			Status:     models.ClaimStatusActive,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bounty_id"}, {Name: "hunter_id"}},
			DoNothing: true,
		}).Create(&claim)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Duplicate claim: return the existing row, leave counters alone.
			return tx.Where("bounty_id = ? AND hunter_id = ?", bountyID, hunterID).
				First(&claim).Error
		}

		return tx.Model(&models.Bounty{}).
			Where("id = ?", bountyID).
			Update("hunter_count", gorm.Expr("hunter_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// ActiveBountySummary is a bounty annotated with the calling hunter's own
// submission counts and earned-to-date for that bounty.
type ActiveBountySummary struct {
	models.Bounty
	MySubmissions int             `json:"my_submissions"`
	MyPending     int             `json:"my_pending"`
	MyApproved    int             `json:"my_approved"`
	MyEarned      decimal.Decimal `json:"my_earned"`
}

// MyActiveBounties returns the active bounties the hunter has claimed.
func (s *BountyService) MyActiveBounties(hunterID string) ([]ActiveBountySummary, error) {
	if hunterID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var bounties []models.Bounty
	err := s.DB.
		Joins("JOIN claims ON claims.bounty_id = bounties.id").
		Where("claims.hunter_id = ? AND bounties.status = ?", hunterID, models.BountyStatusActive).
		Order("bounties.created_at DESC").
		Find(&bounties).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ActiveBountySummary, 0, len(bounties))
	for _, b := range bounties {
		type statusCount struct {
			Status models.SubmissionStatus
			N      int
		}
		var counts []statusCount
		err := s.DB.Model(&models.Submission{}).
			Select("status, COUNT(*) AS n").
			Where("bounty_id = ? AND hunter_id = ?", b.ID, hunterID).
			Group("status").
			Scan(&counts).Error
		if err != nil {
			return nil, err
		}

		summary := ActiveBountySummary{Bounty: b, MyEarned: decimal.Zero}
		for _, sc := range counts {
			summary.MySubmissions += sc.N
			switch sc.Status {
			case models.SubmissionStatusPending:
				summary.MyPending = sc.N
			case models.SubmissionStatusApproved:
				summary.MyApproved = sc.N
			}
		}
		summary.MyEarned = b.PricePerUnit.Mul(decimal.NewFromInt(int64(summary.MyApproved)))
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// --- Fiber handlers ---

// CreateBountyEndpoint handles POST /bounties.
func (s *BountyService) CreateBountyEndpoint(c *fiber.Ctx) error {
	posterID, _ := c.Locals("user_id").(string)

	var req CreateBountyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	bounty, err := s.CreateBounty(posterID, req)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("✅ Bounty created: %s (%s) by %s", bounty.Title, bounty.ID, posterID)
	return c.Status(fiber.StatusCreated).JSON(bounty)
}

// ListBountiesEndpoint handles GET /bounties with status/category/poster_id filters.
func (s *BountyService) ListBountiesEndpoint(c *fiber.Ctx) error {
	filter := BountyFilter{
		Status:   models.BountyStatus(c.Query("status")),
		Category: c.Query("category"),
		PosterID: c.Query("poster_id"),
	}

	bounties, err := s.ListBounties(filter)
	if err != nil {
		log.Printf("DB Error listing bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bounties"})
	}
	return c.JSON(bounties)
}

// GetBountyEndpoint handles GET /bounties/:id.
func (s *BountyService) GetBountyEndpoint(c *fiber.Ctx) error {
	bounty, err := s.GetBounty(c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(bounty)
}

// ClaimBountyEndpoint handles POST /bounties/:id/claim.
func (s *BountyService) ClaimBountyEndpoint(c *fiber.Ctx) error {
	hunterID, _ := c.Locals("user_id").(string)

	claim, err := s.ClaimBounty(c.Params("id"), hunterID)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("🎯 Hunter %s claimed bounty %s", hunterID, claim.BountyID)
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// MyActiveBountiesEndpoint handles GET /user/bounties/active.
func (s *BountyService) MyActiveBountiesEndpoint(c *fiber.Ctx) error {
	hunterID, _ := c.Locals("user_id").(string)

	summaries, err := s.MyActiveBounties(hunterID)
	if err != nil {
		log.Printf("DB Error fetching active bounties for %s: %v", hunterID, err)
		return WriteError(c, err)
	}
	return c.JSON(summaries)
}
