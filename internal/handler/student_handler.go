package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sims-go-api/internal/dto"
	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/service"
	"github.com/noah-isme/sims-go-api/internal/session"
	"github.com/noah-isme/sims-go-api/internal/utils"
)

// StudentHandler serves the add-student flow.
type StudentHandler struct {
	students service.StudentService
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students service.StudentService, sessions *session.Manager, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		sessions: sessions,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// NewForm backs GET /students/new: the course catalog for the form select plus
// a CSRF token.
func (h *StudentHandler) NewForm(c *fiber.Ctx) error {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
	}

	courses, err := h.students.CourseOptions(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	token, err := h.sessions.IssueCSRF(c.UserContext(), &current)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccess(c, "add student form", dto.StudentFormResponse{
		Courses:   courses,
		CSRFToken: token,
	})
}

// Create backs POST /students.
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req dto.AddStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form submission")
	}

	current, ok := middleware.SessionFromContext(c)
	if ok {
		defer func() {
			if err := h.sessions.ResetCSRF(c.UserContext(), &current); err != nil {
				h.logger.Warn().Err(err).Msg("failed to reset csrf token")
			}
		}()
	}

	student, err := h.students.Create(c.UserContext(), req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusBadRequest, "Please select a valid course.")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Student added successfully.", fiber.Map{"id": student.ID})
}
