// services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Ledger error taxonomy. Handlers never invent status codes; they hand any
// core error to WriteError and it maps the type to HTTP.

// ValidationError means bad input shape. Surfaced immediately, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotAuthenticatedError means no acting user was present on the request.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string { return "not authenticated" }

// NotAuthorizedError means the acting user exists but isn't allowed this operation
// (e.g. approving a submission on someone else's bounty).
type NotAuthorizedError struct {
	Msg string
}

func (e *NotAuthorizedError) Error() string { return e.Msg }

// NotFoundError means the referenced bounty/submission/claim is absent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError marks an illegal transition: double-approve, submit against a
// closed bounty, cashout with zero approved units. Never retried.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// TransientError wraps contention or a transient store failure that survived the
// bounded retry loop. Safe for the caller to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure, retry later: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// WriteError maps a ledger error onto the service's JSON error response.
func WriteError(c *fiber.Ctx, err error) error {
	var (
		validationErr *ValidationError
		notAuthnErr   *NotAuthenticatedError
		notAuthzErr   *NotAuthorizedError
		notFoundErr   *NotFoundError
		stateErr      *InvalidStateError
		transientErr  *TransientError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": validationErr.Msg})
	case errors.As(err, &notAuthnErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	case errors.As(err, &notAuthzErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": notAuthzErr.Msg})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	case errors.As(err, &stateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": stateErr.Msg})
	case errors.As(err, &transientErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporary contention, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
