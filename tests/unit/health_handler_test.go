package unit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sims-go-api/internal/config"
	"github.com/noah-isme/sims-go-api/internal/handler"
)

type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName: "SIMS API",
		AppEnv:  "test",
	}

	app := fiber.New()
	app.Get("/healthz", handler.HealthCheck(cfg))

	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to execute request: %v", err)
	}

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload response
	err = json.NewDecoder(resp.Body).Decode(&payload)
	assert.NoError(t, err)
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Message)
	assert.Equal(t, cfg.AppName, payload.Data["app"])
	assert.Equal(t, cfg.AppEnv, payload.Data["env"])
}
