package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sims-go-api/internal/observability"
	"github.com/noah-isme/sims-go-api/internal/session"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// CSRFFormField is the hidden form field carrying the anti-forgery token.
const CSRFFormField = "csrf_token"

// csrfRejectMessage matches the permission-failure wording so a forged request
// learns nothing it would not learn from a role mismatch.
const csrfRejectMessage = "Invalid request."

// CSRFProtected rejects mutating form posts whose csrf_token field does not
// match the token held in the session. Runs after SessionProtected (or after
// the handler has loaded an anonymous session into locals).
func CSRFProtected(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := SessionFromContext(c)
		if !ok {
			observability.AuthFailures().WithLabelValues("csrf").Inc()
			return utils.SendError(c, fiber.StatusForbidden, csrfRejectMessage)
		}

		if err := manager.ValidateCSRF(current, c.FormValue(CSRFFormField)); err != nil {
			observability.AuthFailures().WithLabelValues("csrf").Inc()
			return utils.SendError(c, fiber.StatusForbidden, csrfRejectMessage)
		}

		return c.Next()
	}
}
