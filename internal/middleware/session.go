package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sims-go-api/internal/observability"
	"github.com/noah-isme/sims-go-api/internal/session"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// SessionCookieName is the HTTP-only cookie carrying the opaque session id.
// The id travels only in this cookie, never in URLs.
const SessionCookieName = "sims_session"

const (
	loginPath        = "/login"
	loginTimeoutPath = "/login?timeout=1"
)

// SetSessionCookie writes the session cookie on the response.
func SetSessionCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionProtected guards a route group: requests without a valid authenticated
// session are redirected to the login page before any repository work happens.
// Valid sessions have their inactivity window refreshed; sessions idle past the
// timeout are cleared entirely and redirected with the timeout indicator.
func SessionProtected(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if sessionID == "" {
			observability.AuthFailures().WithLabelValues("unauthenticated").Inc()
			return c.Redirect(loginPath, fiber.StatusSeeOther)
		}

		current, err := manager.Validate(c.UserContext(), sessionID)
		if err != nil {
			ClearSessionCookie(c)
			switch {
			case errors.Is(err, session.ErrExpired):
				observability.AuthFailures().WithLabelValues("session_expired").Inc()
				return c.Redirect(loginTimeoutPath, fiber.StatusSeeOther)
			case errors.Is(err, session.ErrNotFound):
				observability.AuthFailures().WithLabelValues("unauthenticated").Inc()
				return c.Redirect(loginPath, fiber.StatusSeeOther)
			default:
				return utils.SendError(c, fiber.StatusInternalServerError, "operation failed")
			}
		}

		if !current.Authenticated() {
			observability.AuthFailures().WithLabelValues("unauthenticated").Inc()
			return c.Redirect(loginPath, fiber.StatusSeeOther)
		}

		c.Locals("session", current)
		c.Locals("user_id", current.UserID)
		c.Locals("user_role", current.Role)

		return c.Next()
	}
}

// SessionFromContext returns the validated session stored by SessionProtected.
func SessionFromContext(c *fiber.Ctx) (session.Session, bool) {
	value := c.Locals("session")
	if value == nil {
		return session.Session{}, false
	}

	current, ok := value.(session.Session)
	return current, ok
}
