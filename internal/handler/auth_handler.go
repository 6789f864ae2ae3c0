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

// AuthHandler serves the login, logout, and registration flows.
type AuthHandler struct {
	auth     service.AuthService
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, sessions *session.Manager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// LoginForm backs GET /login: returns the CSRF token for the login page render.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return h.renderForm(c, "login form")
}

// RegisterForm backs GET /register.
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return h.renderForm(c, "registration form")
}

func (h *AuthHandler) renderForm(c *fiber.Ctx, message string) error {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
	}

	token, err := h.sessions.IssueCSRF(c.UserContext(), &current)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccess(c, message, dto.FormRenderResponse{CSRFToken: token})
}

// Login backs POST /login. Failures share one generic message regardless of
// which credential was wrong.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form submission")
	}

	user, err := h.auth.Login(c.UserContext(), req, c.IP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid username or password.")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	// Discard the anonymous form session; a login always gets a fresh identity.
	if previous := c.Cookies(middleware.SessionCookieName); previous != "" {
		_ = h.sessions.End(c.UserContext(), previous)
	}

	current, err := h.sessions.Start(c.UserContext(), user)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	middleware.SetSessionCookie(c, current.ID)

	return utils.SendSuccess(c, "login successful", dto.SessionInfo{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

// Logout backs POST /logout: destroys the session and expires the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(middleware.SessionCookieName); sessionID != "" {
		if err := h.sessions.End(c.UserContext(), sessionID); err != nil {
			return sendServiceError(c, requestLogger(h.logger, c), err, nil)
		}
	}

	middleware.ClearSessionCookie(c)

	return utils.SendSuccess(c, "logged out", nil)
}

// Register backs POST /register. The CSRF token is invalidated after every
// submission, successful or not, so the form cannot be replayed.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
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

	_, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateAccount) {
			return utils.SendError(c, fiber.StatusBadRequest, "Username or email already exists.")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, h.auth.EchoFields(req))
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Registration successful! You can now login.", nil)
}
