package handlers

import (
	"fleetwash/internal/app"
	"fleetwash/internal/handlers/middleware"
	"fleetwash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	HealthHandler(api, app.Config)

	authed := api.Group("", app.Middleware.RequireAuth())
	NewEntriesHandler(*app, authed).Register()
	NewApprovalsHandler(*app, authed).Register()
	NewCutoffHandler(*app, authed).Register()
	NewVehiclesHandler(*app, authed).Register()
	NewAdminHandler(*app, authed).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
