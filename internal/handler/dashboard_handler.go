package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sims-go-api/internal/dto"
	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/service"
	"github.com/noah-isme/sims-go-api/internal/session"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// DashboardHandler serves the student list and the admin delete action.
type DashboardHandler struct {
	students service.StudentService
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(students service.StudentService, sessions *session.Manager, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		students: students,
		sessions: sessions,
		logger:   logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Show backs GET /dashboard: the full student table plus the CSRF token for
// the delete forms.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
	}

	rows, err := h.students.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	token, err := h.sessions.IssueCSRF(c.UserContext(), &current)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccess(c, "dashboard", dto.DashboardResponse{
		User: dto.SessionInfo{
			UserID:   current.UserID,
			Username: current.Username,
			Role:     current.Role,
		},
		Students:  rows,
		CSRFToken: token,
	})
}

// Delete backs POST /dashboard/delete. Admin only, CSRF guarded upstream.
// Deleting an id that no longer exists is a reported no-op, safe to retry.
func (h *DashboardHandler) Delete(c *fiber.Ctx) error {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
	}

	defer func() {
		if err := h.sessions.ResetCSRF(c.UserContext(), &current); err != nil {
			h.logger.Warn().Err(err).Msg("failed to reset csrf token")
		}
	}()

	id, err := parseFormUint(c, "student_id")
	if err != nil || id == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	deleted, err := h.students.Delete(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	if !deleted {
		return utils.SendSuccess(c, "Student not found; nothing to delete.", fiber.Map{"deleted": false})
	}

	return utils.SendSuccess(c, "Student deleted successfully.", fiber.Map{"deleted": true})
}
