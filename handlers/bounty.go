// handlers/bounty.go
package handlers

import (
	"bounty-market-system/middleware"
	"bounty-market-system/models"
	"bounty-market-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService) {
	// 🔓 Public routes; no user context, but still behind Gateway auth.
	// The landing page and hunter browse view read these.
	app.Get("/bounties", bountyService.ListBountiesEndpoint)
	app.Get("/bounties/stream", bountyService.StreamBountiesSSE)
	app.Get("/bounties/categories", func(c *fiber.Ctx) error {
		return c.JSON(models.BountyCategories)
	})
	app.Get("/bounties/:id", bountyService.GetBountyEndpoint)

	// 🔐 Secured routes; require user context (userID, roles)
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bounties", bountyService.CreateBountyEndpoint)
	secured.Post("/bounties/:id/claim", bountyService.ClaimBountyEndpoint)
	secured.Get("/user/bounties/active", bountyService.MyActiveBountiesEndpoint)
}
