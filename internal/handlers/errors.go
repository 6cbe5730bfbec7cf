package handlers

import (
	"errors"

	"fleetwash/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the error families controllers return onto HTTP
// status codes. Anything unrecognized is a 500 with a generic message so
// internals never leak.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrPermission):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrTemporalPolicy):
		return fiber.StatusLocked
	case errors.Is(err, apperrors.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrNoManagerAssigned):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := statusForError(err)

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = fallback
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Authentication required",
	})
}
