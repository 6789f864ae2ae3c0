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

// BackupHandler serves the admin backup page and trigger.
type BackupHandler struct {
	backups  service.BackupService
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(backups service.BackupService, sessions *session.Manager, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		backups:  backups,
		sessions: sessions,
		logger:   logger.With().Str("component", "backup_handler").Logger(),
	}
}

// Show backs GET /backup: the documented strategy and existing backup files,
// newest first, name and size only.
func (h *BackupHandler) Show(c *fiber.Ctx) error {
	current, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusInternalServerError, genericFailure)
	}

	files, err := h.backups.List()
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	token, err := h.sessions.IssueCSRF(c.UserContext(), &current)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccess(c, "backup page", dto.BackupPageResponse{
		Strategy:  h.backups.Strategy(),
		Backups:   files,
		CSRFToken: token,
	})
}

// Run backs POST /backup: triggers a dump. Failures surface only as the
// generic message; the dump tool's output is logged server-side.
func (h *BackupHandler) Run(c *fiber.Ctx) error {
	current, ok := middleware.SessionFromContext(c)
	if ok {
		defer func() {
			if err := h.sessions.ResetCSRF(c.UserContext(), &current); err != nil {
				h.logger.Warn().Err(err).Msg("failed to reset csrf token")
			}
		}()
	}

	file, err := h.backups.Run(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, nil)
	}

	return utils.SendSuccess(c, "Backup created successfully: "+file.Name, file)
}
