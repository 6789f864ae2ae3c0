package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sims-go-api/internal/authz"
	"github.com/noah-isme/sims-go-api/internal/observability"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// RequireAction gates a route behind the central authorization predicate. The
// denial message is generic and no state changes on a mismatch.
func RequireAction(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := roleFromLocals(c)
		if !authz.Can(action, role) {
			observability.AuthFailures().WithLabelValues("forbidden").Inc()
			return utils.SendError(c, fiber.StatusForbidden, "access denied")
		}

		return c.Next()
	}
}

func roleFromLocals(c *fiber.Ctx) string {
	if value := c.Locals("user_role"); value != nil {
		if role, ok := value.(string); ok {
			return strings.ToLower(strings.TrimSpace(role))
		}
	}
	return ""
}
