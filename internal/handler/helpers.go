package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/service"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// genericFailure is what clients see for store-layer errors; the real cause is
// only ever logged.
const genericFailure = "operation failed"

func actorFromContext(c *fiber.Ctx) service.Actor {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return service.Actor{}
	}

	return service.Actor{
		ID:       current.UserID,
		Username: current.Username,
		Role:     current.Role,
	}
}

func parseFormUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.FormValue(key))
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendServiceError maps service failures onto the error taxonomy: field-level
// validation errors render inline with 400, everything unexpected collapses to
// the generic failure message.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, echo map[string]string) error {
	if ve, ok := service.AsValidationError(err); ok {
		payload := fiber.Map{"field": ve.Field}
		if len(echo) > 0 {
			payload["echo"] = echo
		}
		return utils.SendErrorWithData(c, fiber.StatusBadRequest, ve.Message, payload)
	}

	logger.Error().Err(err).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
}
