package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

type peopleService struct {
	backend        domain.Backend
	venues         domain.VenueCatalog
	contextTimeout time.Duration
}

func NewPeopleService(backend domain.Backend, venues domain.VenueCatalog, timeout time.Duration) domain.PeopleService {
	return &peopleService{backend: backend, venues: venues, contextTimeout: timeout}
}

func (s *peopleService) Directory(ctx context.Context, role domain.Role) ([]*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if role == 0 {
		return s.backend.ListUsers(ctx)
	}
	return s.backend.ListUsersByRole(ctx, role)
}

func (s *peopleService) User(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.backend.GetUser(ctx, userID)
}

// FormOptions loads the speaker and moderator pickers of the event form.
// Moderators are drawn from attendees.
func (s *peopleService) FormOptions(ctx context.Context) (*domain.EventFormOptions, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	opts := &domain.EventFormOptions{Venues: s.venues.List()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		opts.Speakers, err = s.backend.ListUsersByRole(gctx, domain.RoleSpeaker)
		return err
	})
	g.Go(func() (err error) {
		opts.Moderators, err = s.backend.ListUsersByRole(gctx, domain.RoleAttendee)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load form options: %w", err)
	}
	return opts, nil
}
