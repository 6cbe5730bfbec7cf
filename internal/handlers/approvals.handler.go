package handlers

import (
	"fleetwash/internal/app"
	approvalsController "fleetwash/internal/controllers/approvals"
	"fleetwash/internal/handlers/middleware"
	. "fleetwash/internal/models"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApprovalsHandler struct {
	Handler
	approvalsController approvalsController.ApprovalsControllerInterface
}

func NewApprovalsHandler(app app.App, router fiber.Router) *ApprovalsHandler {
	return &ApprovalsHandler{
		approvalsController: app.Controllers.Approvals,
		Handler: Handler{
			log:        logger.New("handlers").File("approvals_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApprovalsHandler) Register() {
	approvals := h.router.Group("/approvals")
	approvals.Get("/assigned", h.listAssigned)
	approvals.Get("/mine", h.listMine)
	approvals.Post("/:id/resolve", h.resolve)
}

// listAssigned returns requests awaiting (or previously ruled by) the
// authenticated manager.
func (h *ApprovalsHandler) listAssigned(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	status := ApprovalStatus(c.Query("status", string(ApprovalStatusPending)))

	requests, err := h.approvalsController.ListForManager(c.UserContext(), user, status)
	if err != nil {
		return errorResponse(c, err, "Failed to list approval requests")
	}

	return c.JSON(fiber.Map{
		"requests": requests,
	})
}

func (h *ApprovalsHandler) listMine(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	requests, err := h.approvalsController.ListForEmployee(c.UserContext(), user)
	if err != nil {
		return errorResponse(c, err, "Failed to list approval requests")
	}

	return c.JSON(fiber.Map{
		"requests": requests,
	})
}

func (h *ApprovalsHandler) resolve(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req approvalsController.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resolved, err := h.approvalsController.Resolve(c.UserContext(), user, requestID, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to resolve approval request")
	}

	return c.JSON(fiber.Map{
		"request": resolved,
	})
}
