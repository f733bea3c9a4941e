// Package memory holds in-process implementations of the domain stores.
package memory

import (
	"context"
	"sync"
	"time"

	"confernet/internal/domain"
)

type HintStore struct {
	mu    sync.RWMutex
	hints map[string]domain.SessionHints
	now   func() time.Time
}

func NewHintStore() domain.HintStore {
	return &HintStore{
		hints: make(map[string]domain.SessionHints),
		now:   time.Now,
	}
}

func (s *HintStore) Get(ctx context.Context, clientID string) (*domain.SessionHints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hints[clientID]
	if !ok {
		return &domain.SessionHints{}, nil
	}
	return &h, nil
}

func (s *HintStore) Save(ctx context.Context, clientID string, hints *domain.SessionHints) error {
	h := *hints
	h.UpdatedAt = s.now()
	s.mu.Lock()
	s.hints[clientID] = h
	s.mu.Unlock()
	hints.UpdatedAt = h.UpdatedAt
	return nil
}

// ExpireBefore drops hints last saved before cutoff.
func (s *HintStore) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, h := range s.hints {
		if h.UpdatedAt.Before(cutoff) {
			delete(s.hints, id)
			n++
		}
	}
	return n, nil
}

func (s *HintStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	delete(s.hints, clientID)
	s.mu.Unlock()
	return nil
}
