package domain

import (
	"context"
	"time"
)

// SessionHints is the last known identity of an app instance, used to paint the UI before the
// authoritative profile fetch resolves. It is never a source of truth.
type SessionHints struct {
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	Role             string    `json:"role"`
	SignupInProgress bool      `json:"signup_in_progress"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HintStore persists SessionHints per app instance.
// Get returns empty hints (not an error) when nothing was stored.
type HintStore interface {
	Get(ctx context.Context, clientID string) (*SessionHints, error)
	Save(ctx context.Context, clientID string, hints *SessionHints) error
	Clear(ctx context.Context, clientID string) error
}

// HintExpirer is implemented by hint stores that can drop entries not written since cutoff.
type HintExpirer interface {
	ExpireBefore(ctx context.Context, cutoff time.Time) (int, error)
}
