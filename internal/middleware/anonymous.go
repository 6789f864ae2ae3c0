package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sims-go-api/internal/session"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// AnonymousSession loads the caller's session for public form routes, creating
// a fresh anonymous one when none exists or the old one expired. Pre-login
// forms need a session to hold their CSRF token.
func AnonymousSession(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var current session.Session

		if sessionID := c.Cookies(SessionCookieName); sessionID != "" {
			if loaded, err := manager.Validate(c.UserContext(), sessionID); err == nil {
				current = loaded
			}
		}

		if current.ID == "" {
			created, err := manager.StartAnonymous(c.UserContext())
			if err != nil {
				return utils.SendError(c, fiber.StatusInternalServerError, "operation failed")
			}
			current = created
			SetSessionCookie(c, current.ID)
		}

		c.Locals("session", current)

		return c.Next()
	}
}
