package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sims-go-api/internal/authz"
)

func TestRequireActionDeniesWrongRole(t *testing.T) {
	app := fiber.New()
	app.Post("/delete", func(c *fiber.Ctx) error {
		c.Locals("user_role", "user")
		return c.Next()
	}, RequireAction(authz.ActionStudentDelete), func(c *fiber.Ctx) error {
		return c.SendString("deleted")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/delete", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireActionAllowsAdmin(t *testing.T) {
	app := fiber.New()
	app.Post("/delete", func(c *fiber.Ctx) error {
		c.Locals("user_role", "admin")
		return c.Next()
	}, RequireAction(authz.ActionStudentDelete), func(c *fiber.Ctx) error {
		return c.SendString("deleted")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/delete", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireActionDeniesMissingRole(t *testing.T) {
	app := fiber.New()
	app.Post("/backup", RequireAction(authz.ActionBackupRun), func(c *fiber.Ctx) error {
		return c.SendString("ran")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/backup", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
