package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sims-go-api/internal/models"
)

// ErrCSRFMismatch indicates the submitted anti-forgery token did not match the session.
var ErrCSRFMismatch = errors.New("csrf token mismatch")

// Manager owns the session lifecycle: creation at login, the sliding inactivity
// window enforced on every request, and the per-session CSRF token.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	tokenLength int
	now         func() time.Time
}

// NewManager constructs a session manager. tokenLength is the CSRF token size in bytes.
func NewManager(store Store, idleTimeout time.Duration, tokenLength int) *Manager {
	return &Manager{
		store:       store,
		idleTimeout: idleTimeout,
		tokenLength: tokenLength,
		now:         time.Now,
	}
}

// Start creates a fresh authenticated session for the given user.
func (m *Manager) Start(ctx context.Context, user models.User) (Session, error) {
	session := Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		LastActivity: m.now(),
	}

	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// StartAnonymous creates an unauthenticated session so pre-login forms can carry a CSRF token.
func (m *Manager) StartAnonymous(ctx context.Context) (Session, error) {
	session := Session{
		ID:           uuid.NewString(),
		LastActivity: m.now(),
	}

	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// Validate loads the session and enforces the sliding inactivity window. A
// session idle past the timeout is deleted outright and ErrExpired returned;
// otherwise the activity timestamp is stamped to now, extending the window by
// the full idle period again.
func (m *Manager) Validate(ctx context.Context, id string) (Session, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}

	if m.now().Sub(session.LastActivity) > m.idleTimeout {
		if err := m.store.Delete(ctx, id); err != nil {
			return Session{}, err
		}
		return Session{}, ErrExpired
	}

	session.LastActivity = m.now()
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// End destroys the session (logout).
func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// IssueCSRF returns the session's anti-forgery token, generating one only when
// the session has none. Repeated calls within a session lifetime return the
// same token.
func (m *Manager) IssueCSRF(ctx context.Context, session *Session) (string, error) {
	if session.CSRFToken != "" {
		return session.CSRFToken, nil
	}

	raw := make([]byte, m.tokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}

	session.CSRFToken = hex.EncodeToString(raw)
	if err := m.store.Save(ctx, *session); err != nil {
		return "", err
	}

	return session.CSRFToken, nil
}

// ValidateCSRF checks the submitted token against the session token using a
// constant-time comparison. A session without a token rejects everything.
func (m *Manager) ValidateCSRF(session Session, candidate string) error {
	if session.CSRFToken == "" || candidate == "" {
		return ErrCSRFMismatch
	}

	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(candidate)) != 1 {
		return ErrCSRFMismatch
	}

	return nil
}

// ResetCSRF invalidates the session token after a state-mutating action so a
// captured form submission cannot be replayed. The next form render issues a
// fresh token.
func (m *Manager) ResetCSRF(ctx context.Context, session *Session) error {
	session.CSRFToken = ""
	return m.store.Save(ctx, *session)
}
