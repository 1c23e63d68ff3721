// handlers/submission.go
package handlers

import (
	"bounty-market-system/middleware"
	"bounty-market-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSubmissionRoutes(app *fiber.App, submissionService *services.SubmissionService) {
	// All submission traffic carries a user identity.
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bounties/:id/submissions", submissionService.SubmitWorkEndpoint)
	secured.Get("/bounties/:id/submissions", submissionService.ListSubmissionsEndpoint)

	// Poster decisions
	secured.Post("/submissions/:id/approve", submissionService.ApproveSubmissionEndpoint)
	secured.Post("/submissions/:id/reject", submissionService.RejectSubmissionEndpoint)
	secured.Get("/user/review-queue", submissionService.PendingReviewQueueEndpoint)
}
