package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
)

const auditSubjectPrefix = "sims.audit."

// AuditService records security-relevant events: every login attempt lands in
// the login_attempts table, and events optionally fan out over NATS for
// downstream consumers. Audit failures are logged, never surfaced to the user.
type AuditService interface {
	RecordLogin(ctx context.Context, username, remoteIP string, succeeded bool)
	Publish(action string, payload map[string]interface{})
}

type auditService struct {
	attempts repository.LoginAttemptRepository
	nats     *nats.Conn
	logger   zerolog.Logger
}

// NewAuditService constructs the audit recorder. natsConn may be nil; event
// fan-out is skipped when it is.
func NewAuditService(attempts repository.LoginAttemptRepository, natsConn *nats.Conn, logger zerolog.Logger) AuditService {
	return &auditService{
		attempts: attempts,
		nats:     natsConn,
		logger:   logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) RecordLogin(ctx context.Context, username, remoteIP string, succeeded bool) {
	attempt := models.LoginAttempt{
		Username:  username,
		Succeeded: succeeded,
		RemoteIP:  remoteIP,
		Metadata:  datatypes.JSONMap{},
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to record login attempt")
	}

	s.Publish("login", map[string]interface{}{
		"username":  username,
		"succeeded": succeeded,
		"remote_ip": remoteIP,
		"at":        time.Now().UTC(),
	})
}

func (s *auditService) Publish(action string, payload map[string]interface{}) {
	if s.nats == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to encode audit event")
		return
	}

	if err := s.nats.Publish(auditSubjectPrefix+action, data); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to publish audit event")
	}
}
