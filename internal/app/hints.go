package app

import (
	"context"
	"fmt"
	"sync"

	"confernet/internal/domain"
)

// Hints is the session-hint accessor of one instance. Writes go through to the store; reads are
// served from the cached copy so the gate can check the signup flag without I/O.
type Hints struct {
	store    domain.HintStore
	clientID string

	mu     sync.RWMutex
	cached domain.SessionHints
}

func newHints(store domain.HintStore, clientID string) *Hints {
	return &Hints{store: store, clientID: clientID}
}

// Load replaces the cached copy with the stored hints.
func (h *Hints) Load(ctx context.Context) error {
	stored, err := h.store.Get(ctx, h.clientID)
	if err != nil {
		return fmt.Errorf("load hints: %w", err)
	}
	h.mu.Lock()
	h.cached = *stored
	h.mu.Unlock()
	return nil
}

func (h *Hints) Get() domain.SessionHints {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cached
}

func (h *Hints) Save(ctx context.Context, hints domain.SessionHints) error {
	if err := h.store.Save(ctx, h.clientID, &hints); err != nil {
		return fmt.Errorf("save hints: %w", err)
	}
	h.mu.Lock()
	h.cached = hints
	h.mu.Unlock()
	return nil
}

// Clear forgets the hints. The cache is cleared even when the store fails.
func (h *Hints) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.cached = domain.SessionHints{}
	h.mu.Unlock()
	if err := h.store.Clear(ctx, h.clientID); err != nil {
		return fmt.Errorf("clear hints: %w", err)
	}
	return nil
}

// SignupInProgress reports the cached registration-in-progress flag.
func (h *Hints) SignupInProgress() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cached.SignupInProgress
}
