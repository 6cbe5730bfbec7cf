package handlers

import (
	"errors"
	"fmt"
	"testing"

	"fleetwash/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.ErrValidation, fiber.StatusBadRequest},
		{"not found", apperrors.ErrNotFound, fiber.StatusNotFound},
		{"conflict", apperrors.ErrConflict, fiber.StatusConflict},
		{"permission", apperrors.ErrPermission, fiber.StatusForbidden},
		{"period closed", apperrors.ErrTemporalPolicy, fiber.StatusLocked},
		{"invalid state", apperrors.ErrInvalidState, fiber.StatusConflict},
		{"no manager", apperrors.ErrNoManagerAssigned, fiber.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
		{"network", apperrors.ErrNetwork, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusForError(tt.err))
		})
	}
}

func TestStatusForErrorUnwrapsCause(t *testing.T) {
	wrapped := fmt.Errorf("removing entry: %w", apperrors.ErrPermission)
	assert.Equal(t, fiber.StatusForbidden, statusForError(wrapped))
}
