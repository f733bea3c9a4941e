package domain

import (
	"context"
	"time"
)

// Session is the identity provider's notion of a currently authenticated principal.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's token has passed its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IdentityBackend is the external identity provider: it creates, resumes and verifies sessions.
// It keeps no per-browser state; see identity.Client for that.
type IdentityBackend interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Lookup resolves a previously issued token back into a session.
	Lookup(ctx context.Context, token string) (*Session, error)
}

// SessionSource publishes session changes. The callback receives nil when no session is active.
type SessionSource interface {
	OnSessionChanged(fn func(*Session)) (unsubscribe func())
}
