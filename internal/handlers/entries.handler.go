package handlers

import (
	"fleetwash/internal/app"
	entriesController "fleetwash/internal/controllers/entries"
	"fleetwash/internal/handlers/middleware"
	. "fleetwash/internal/models"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type EntriesHandler struct {
	Handler
	entriesController entriesController.EntriesControllerInterface
}

func NewEntriesHandler(app app.App, router fiber.Router) *EntriesHandler {
	return &EntriesHandler{
		entriesController: app.Controllers.Entries,
		Handler: Handler{
			log:        logger.New("handlers").File("entries_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EntriesHandler) Register() {
	entries := h.router.Group("/entries")
	entries.Post("", h.createEntry)
	entries.Get("", h.queryEntries)
	entries.Delete("/:id", h.removeEntry)
	entries.Post("/:id/restore", h.restoreEntry)

	h.router.Get("/board/:locationId/:date", h.getDayBoard)
}

func (h *EntriesHandler) createEntry(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req entriesController.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := h.entriesController.CreateEntry(c.UserContext(), user, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to create entry")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"entry": entry,
	})
}

func (h *EntriesHandler) removeEntry(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}

	var req entriesController.RemoveEntryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	result, err := h.entriesController.RemoveEntry(c.UserContext(), user, entryID, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to remove entry")
	}

	if result.Escalated() {
		// 202: nothing was removed yet, a manager has to rule first
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"request": result.Request,
		})
	}

	return c.JSON(fiber.Map{
		"entry": result.Entry,
	})
}

func (h *EntriesHandler) restoreEntry(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}

	entry, err := h.entriesController.RestoreEntry(c.UserContext(), user, entryID)
	if err != nil {
		return errorResponse(c, err, "Failed to restore entry")
	}

	return c.JSON(fiber.Map{
		"entry": entry,
	})
}

func (h *EntriesHandler) getDayBoard(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid location ID",
		})
	}

	board, err := h.entriesController.GetDayBoard(c.UserContext(), user, locationID, c.Params("date"))
	if err != nil {
		return errorResponse(c, err, "Failed to load board")
	}

	return c.JSON(board)
}

func (h *EntriesHandler) queryEntries(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	req := entriesController.QueryEntriesRequest{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: EntryStatus(c.Query("status")),
	}

	if locationID := c.Query("locationId"); locationID != "" {
		parsed, err := uuid.Parse(locationID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid location ID",
			})
		}
		req.LocationIDs = []uuid.UUID{parsed}
	}

	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		parsed, err := uuid.Parse(vehicleID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid vehicle ID",
			})
		}
		req.VehicleID = &parsed
	}

	entries, err := h.entriesController.QueryEntries(c.UserContext(), user, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to query entries")
	}

	return c.JSON(fiber.Map{
		"entries": entries,
	})
}
