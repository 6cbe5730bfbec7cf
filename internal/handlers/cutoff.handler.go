package handlers

import (
	"strconv"

	"fleetwash/internal/app"
	cutoffController "fleetwash/internal/controllers/cutoff"
	"fleetwash/internal/handlers/middleware"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type CutoffHandler struct {
	Handler
	cutoffController cutoffController.CutoffControllerInterface
}

func NewCutoffHandler(app app.App, router fiber.Router) *CutoffHandler {
	return &CutoffHandler{
		cutoffController: app.Controllers.Cutoff,
		Handler: Handler{
			log:        logger.New("handlers").File("cutoff_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CutoffHandler) Register() {
	cutoff := h.router.Group("/cutoff")
	cutoff.Get("", h.getCurrent)
	cutoff.Put("", h.update)
	cutoff.Get("/history", h.history)
}

func (h *CutoffHandler) getCurrent(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	current, err := h.cutoffController.GetCurrent(c.UserContext(), user)
	if err != nil {
		return errorResponse(c, err, "Failed to get cutoff")
	}

	return c.JSON(current)
}

func (h *CutoffHandler) update(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req cutoffController.UpdateCutoffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.cutoffController.Update(c.UserContext(), user, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to update cutoff")
	}

	return c.JSON(updated)
}

func (h *CutoffHandler) history(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	history, err := h.cutoffController.History(c.UserContext(), user, limit)
	if err != nil {
		return errorResponse(c, err, "Failed to get cutoff history")
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}
