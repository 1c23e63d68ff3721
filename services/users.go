// services/users.go
package services

import (
	"strconv"
	"strings"

	"bounty-market-system/models"

	"github.com/gofiber/fiber/v2"
)

// SearchHunters searches the local profile mirror. Posters use it to look up
// who is working their bounties; results never expose more than the mirror
// holds.
func (s *StatsService) SearchHunters(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.HunterMirror
	db := s.DB.Model(&models.HunterMirror{}).Limit(limit)

	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?",
			searchTerm, searchTerm,
		)
	}

	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type HunterSummary struct {
		ExternalUserID string `json:"external_user_id"`
		Username       string `json:"username"`
		DisplayName    string `json:"display_name,omitempty"`
	}

	res := make([]HunterSummary, len(users))
	for i, u := range users {
		res[i] = HunterSummary{
			ExternalUserID: u.ExternalUserID,
			Username:       u.Username,
			DisplayName:    u.DisplayName,
		}
	}

	return c.JSON(res)
}
