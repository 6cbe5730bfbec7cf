package handlers

import (
	"fleetwash/internal/app"
	vehiclesController "fleetwash/internal/controllers/vehicles"
	"fleetwash/internal/handlers/middleware"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type VehiclesHandler struct {
	Handler
	vehiclesController vehiclesController.VehiclesControllerInterface
}

func NewVehiclesHandler(app app.App, router fiber.Router) *VehiclesHandler {
	return &VehiclesHandler{
		vehiclesController: app.Controllers.Vehicles,
		Handler: Handler{
			log:        logger.New("handlers").File("vehicles_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *VehiclesHandler) Register() {
	vehicles := h.router.Group("/vehicles")
	vehicles.Get("/location/:locationId", h.listByLocation)
	vehicles.Get("/number/:number", h.getByNumber)
}

func (h *VehiclesHandler) listByLocation(c *fiber.Ctx) error {
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

	vehicles, err := h.vehiclesController.ListByLocation(c.UserContext(), user, locationID)
	if err != nil {
		return errorResponse(c, err, "Failed to list vehicles")
	}

	return c.JSON(fiber.Map{
		"vehicles": vehicles,
	})
}

func (h *VehiclesHandler) getByNumber(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	vehicle, err := h.vehiclesController.GetByNumber(c.UserContext(), user, c.Params("number"))
	if err != nil {
		return errorResponse(c, err, "Failed to get vehicle")
	}

	return c.JSON(fiber.Map{
		"vehicle": vehicle,
	})
}
