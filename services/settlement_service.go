// services/settlement_service.go
package services

import (
	"errors"
	"log"
	"time"

	"bounty-market-system/models"
	"bounty-market-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// platformFeeRate is the fixed percentage retained from every settlement.
var platformFeeRate = decimal.NewFromFloat(0.10)

// SettlementService converts approved-but-unsettled units into immutable
// Cashout records. Settlement is bookkeeping only; no real funds move.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// CashoutBounty settles all currently-approved units on a bounty. Atomically:
// create the Cashout record, add the gross amount to the poster's total_spent,
// and reset the bounty's approved counter to zero. The reset is guarded on the
// approved value we read; if a concurrent approval changed it, the whole
// transaction re-runs from a fresh read instead of settling a stale count.
func (s *SettlementService) CashoutBounty(bountyID, actorID string) (*models.Cashout, error) {
	if actorID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var cashout *models.Cashout
	err := runInTx(s.DB, func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "bounty", ID: bountyID}
			}
			return err
		}
		if bounty.PosterID != actorID {
			return &NotAuthorizedError{Msg: "only the bounty poster may cash out"}
		}
		if bounty.Approved == 0 {
			return &InvalidStateError{Msg: "nothing to cash out: no approved units"}
		}

		approvedCount := bounty.Approved
		amount := bounty.PricePerUnit.Mul(decimal.NewFromInt(int64(approvedCount)))
		fee := amount.Mul(platformFeeRate).Round(2)
		net := amount.Sub(fee)

		now := time.Now()
		res := tx.Model(&models.Bounty{}).
			Where("id = ? AND approved = ?", bountyID, approvedCount).
			Updates(map[string]interface{}{
				"approved":        0,
				"last_cashout_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Approved count moved under us; retry against fresh state.
			return errStaleRead
		}

		cashout = &models.Cashout{
			ID:            uuid.NewString(),
			BountyID:      bountyID,
			PosterID:      actorID,
			ApprovedCount: approvedCount,
			Amount:        amount,
			PlatformFee:   fee,
			NetAmount:     net,
			CashedOutAt:   now,
		}
		if err := tx.Create(cashout).Error; err != nil {
			return err
		}

		if err := ensureStats(tx, actorID); err != nil {
			return err
		}
		return tx.Model(&models.UserStats{}).
			Where("id = ?", actorID).
			Update("total_spent", gorm.Expr("total_spent + ?", amount)).Error
	})
	if err != nil {
		return nil, err
	}
	return cashout, nil
}

// ListCashouts returns the settlement audit trail for one bounty, newest
// first. Poster-only: the trail includes fee amounts.
func (s *SettlementService) ListCashouts(bountyID, actorID string) ([]models.Cashout, error) {
	if actorID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var bounty models.Bounty
	if err := s.DB.First(&bounty, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "bounty", ID: bountyID}
		}
		return nil, err
	}
	if bounty.PosterID != actorID {
		return nil, &NotAuthorizedError{Msg: "only the bounty poster may view cashouts"}
	}

	var cashouts []models.Cashout
	err := s.DB.Where("bounty_id = ?", bountyID).
		Order("cashed_out_at DESC").
		Find(&cashouts).Error
	if err != nil {
		return nil, err
	}
	return cashouts, nil
}

// --- Fiber handlers ---

// CashoutBountyEndpoint handles POST /bounties/:id/cashout.
func (s *SettlementService) CashoutBountyEndpoint(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)

	cashout, err := s.CashoutBounty(c.Params("id"), actorID)
	if err != nil {
		return WriteError(c, err)
	}

	log.Printf("💸 Cashout %s: %d unit(s), %s gross / %s net for poster %s",
		cashout.ID, cashout.ApprovedCount,
		utils.FormatAmount(cashout.Amount), utils.FormatAmount(cashout.NetAmount), actorID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"cashout":        cashout,
		"display_amount": utils.FormatAmount(cashout.Amount),
		"display_net":    utils.FormatAmount(cashout.NetAmount),
	})
}

// ListCashoutsEndpoint handles GET /bounties/:id/cashouts.
func (s *SettlementService) ListCashoutsEndpoint(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)

	cashouts, err := s.ListCashouts(c.Params("id"), actorID)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(cashouts)
}
