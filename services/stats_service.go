// services/stats_service.go
package services

import (
	"errors"
	"log"

	"bounty-market-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsService exposes read access to per-user running totals. The totals
// themselves are written only by the bounty/submission/settlement services,
// always inside the transaction of the triggering ledger event.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// ensureStats makes sure a UserStats row exists for userID (idempotent, safe
// under concurrent callers). Runs inside the caller's transaction so the row
// and the increment that needs it commit together.
func ensureStats(tx *gorm.DB, userID string) error {
	stats := models.UserStats{
		ID:          userID,
		TotalEarned: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&stats).Error
}

// GetStats loads a user's aggregate record, creating the zero row on first
// read so new users don't 404 on their own dashboard.
func (s *StatsService) GetStats(userID string) (*models.UserStats, error) {
	if userID == "" {
		return nil, &NotAuthenticatedError{}
	}

	var stats models.UserStats
	err := s.DB.First(&stats, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := ensureStats(s.DB, userID); err != nil {
			return nil, err
		}
		err = s.DB.First(&stats, "id = ?", userID).Error
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetUserStatsEndpoint returns the authenticated user's aggregates.
func (s *StatsService) GetUserStatsEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	stats, err := s.GetStats(userID)
	if err != nil {
		log.Printf("DB Error fetching user stats for %s: %v", userID, err)
		return WriteError(c, err)
	}

	return c.JSON(stats)
}

// displayName resolves a user's display name from the local profile mirror.
// Empty string when the mirror hasn't seen the user yet; callers store it
// as-is and the UI falls back to the id.
func displayName(db *gorm.DB, externalUserID string) string {
	var mirror models.HunterMirror
	err := db.Where("external_user_id = ?", externalUserID).First(&mirror).Error
	if err != nil {
		return ""
	}
	if mirror.DisplayName != "" {
		return mirror.DisplayName
	}
	return mirror.Username
}
