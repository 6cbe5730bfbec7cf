package middleware

import (
	"fleetwash/internal/roles"

	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route on the role hierarchy. RequireAuth must run
// first on the same chain.
func (m *Middleware) RequireRole(required roles.Role) fiber.Handler {
	log := m.log.Function("RequireRole")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !roles.HasRoleOrHigher(user.Role, required) {
			log.Info("insufficient role", "userID", user.ID, "role", user.Role, "required", required)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient role",
			})
		}

		return c.Next()
	}
}
