package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

type scheduleService struct {
	backend        domain.Backend
	venues         domain.VenueCatalog
	contextTimeout time.Duration
}

func NewScheduleService(backend domain.Backend, venues domain.VenueCatalog, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{backend: backend, venues: venues, contextTimeout: timeout}
}

func (s *scheduleService) Schedule(ctx context.Context, userID string) ([]*domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var upcoming, joined, bookmarked []*domain.Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		upcoming, err = s.backend.ListUpcomingEvents(gctx)
		return err
	})
	if userID != "" {
		g.Go(func() (err error) {
			joined, err = s.backend.ListRegisteredEvents(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			bookmarked, err = s.backend.ListBookmarkedEvents(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*domain.ScheduleEntry, 0, len(upcoming))
	for _, e := range upcoming {
		out = append(out, &domain.ScheduleEntry{
			Event:      e,
			Joined:     domain.Has(joined, e.ID),
			Bookmarked: domain.Has(bookmarked, e.ID),
		})
	}
	return out, nil
}

// MySchedule drops events that ended before now. An event both joined and bookmarked
// appears once with both flags set.
func (s *scheduleService) MySchedule(ctx context.Context, userID string, now time.Time) ([]*domain.ScheduleEntry, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var joined, bookmarked []*domain.Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		joined, err = s.backend.ListRegisteredEvents(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		bookmarked, err = s.backend.ListBookmarkedEvents(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := map[string]*domain.ScheduleEntry{}
	out := []*domain.ScheduleEntry{}
	add := func(e *domain.Event, mark func(*domain.ScheduleEntry)) {
		if !e.EndDate.IsZero() && e.EndDate.Before(now) {
			return
		}
		entry, ok := byID[e.ID]
		if !ok {
			entry = &domain.ScheduleEntry{Event: e}
			byID[e.ID] = entry
			out = append(out, entry)
		}
		mark(entry)
	}
	for _, e := range joined {
		add(e, func(en *domain.ScheduleEntry) { en.Joined = true })
	}
	for _, e := range bookmarked {
		add(e, func(en *domain.ScheduleEntry) { en.Bookmarked = true })
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Event.StartDate.Before(out[j].Event.StartDate.Time)
	})
	return out, nil
}

func (s *scheduleService) Venues() []domain.Venue {
	return s.venues.List()
}
