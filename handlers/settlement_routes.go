// handlers/settlement_routes.go
package handlers

import (
	"bounty-market-system/middleware"
	"bounty-market-system/models"
	"bounty-market-system/services"
	"bounty-market-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupSettlementRoutes(app *fiber.App, settlementService *services.SettlementService, statsService *services.StatsService, authClient *services.AuthServiceClient) {
	// SSE route authenticates via query params (EventSource can't set headers)
	app.Get("/user/stats/stream", middleware.SSEAuthMiddleware(authClient), statsService.StreamUserStatsSSE)

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bounties/:id/cashout", settlementService.CashoutBountyEndpoint)
	secured.Get("/bounties/:id/cashouts", settlementService.ListCashoutsEndpoint)
	secured.Get("/user/stats", statsService.GetUserStatsEndpoint)
	secured.Get("/hunters/search", statsService.SearchHunters)

	// Poster dashboard header: aggregate spend plus the budget still committed
	// to active bounties.
	secured.Get("/user/budget", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats, err := statsService.GetStats(userID)
		if err != nil {
			return services.WriteError(c, err)
		}

		var bounties []models.Bounty
		if err := statsService.DB.
			Where("poster_id = ? AND status = ?", userID, models.BountyStatusActive).
			Find(&bounties).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch active bounties",
				"cause": err.Error(),
			})
		}

		activeBudget := decimal.Zero
		for _, b := range bounties {
			activeBudget = activeBudget.Add(b.TotalBudget)
		}

		return c.JSON(fiber.Map{
			"total_spent":           stats.TotalSpent,
			"active_budget":         activeBudget,
			"active_bounties":       len(bounties),
			"display_total_spent":   utils.FormatAmount(stats.TotalSpent),
			"display_active_budget": utils.FormatAmount(activeBudget),
		})
	})
}
