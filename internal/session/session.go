package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no session exists for the supplied identifier.
var ErrNotFound = errors.New("session not found")

// ErrExpired indicates the session exceeded its inactivity window and has been cleared.
var ErrExpired = errors.New("session expired")

// Session is the per-client state carried between requests. Anonymous sessions
// (UserID zero) exist only so pre-login forms can hold a CSRF token.
type Session struct {
	ID           string    `json:"id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	LastActivity time.Time `json:"last_activity"`
	CSRFToken    string    `json:"csrf_token"`
}

// Authenticated reports whether the session is bound to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != 0
}

// Store persists sessions keyed by their opaque identifier.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}
