package handlers

import (
	"strconv"

	"fleetwash/internal/app"
	adminController "fleetwash/internal/controllers/admin"
	"fleetwash/internal/handlers/middleware"
	"fleetwash/internal/roles"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	Handler
	adminController adminController.AdminControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		adminController: app.Controllers.Admin,
		Handler: Handler{
			log:        logger.New("handlers").File("admin_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireRole(roles.Admin))
	admin.Get("/audit", h.getAuditTrail)
}

func (h *AdminHandler) getAuditTrail(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	req := adminController.AuditTrailRequest{
		TableName: c.Query("table"),
		Limit:     limit,
	}

	if recordID := c.Query("recordId"); recordID != "" {
		parsed, err := uuid.Parse(recordID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid record ID",
			})
		}
		req.RecordID = &parsed
	}

	if actorID := c.Query("actorId"); actorID != "" {
		parsed, err := uuid.Parse(actorID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid actor ID",
			})
		}
		req.ActorID = &parsed
	}

	entries, err := h.adminController.GetAuditTrail(c.UserContext(), user, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to get audit trail")
	}

	return c.JSON(fiber.Map{
		"entries": entries,
	})
}
