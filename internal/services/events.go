package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

// CreatedAtLayout is the backend's createdAt format: ISO 8601 in UTC with milliseconds.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

type eventService struct {
	backend        domain.Backend
	feedback       domain.FeedbackService
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewEventService(backend domain.Backend, feedback domain.FeedbackService, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return newEventService(backend, feedback, logger, timeout, time.Now)
}

func newEventService(backend domain.Backend, feedback domain.FeedbackService, logger *slog.Logger, timeout time.Duration, now func() time.Time) *eventService {
	return &eventService{
		backend:        backend,
		feedback:       feedback,
		logger:         logger,
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *eventService) List(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.backend.ListEvents(ctx)
}

func (s *eventService) Upcoming(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.backend.ListUpcomingEvents(ctx)
}

// Detail loads the event and its side panels in parallel. Only the event itself is required;
// a failing panel is logged and rendered empty.
func (s *eventService) Detail(ctx context.Context, eventID, viewerID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	d := &domain.EventDetail{
		AttendeeIDs: []string{},
		Files:       map[string][]*domain.UploadedFile{},
		Feedback:    &domain.Feedback{Comments: []*domain.CommentView{}, Ratings: &domain.RatingSummary{}},
	}
	var membership *domain.Membership

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Event, err = s.backend.GetEvent(gctx, eventID)
		return err
	})
	g.Go(func() error {
		ids, err := s.backend.ListEventAttendees(gctx, eventID)
		if err != nil {
			s.softFail(gctx, "attendees", eventID, err)
			return nil
		}
		d.AttendeeIDs = ids
		return nil
	})
	g.Go(func() error {
		files, err := s.backend.ListUploadedFiles(gctx, eventID)
		if err != nil {
			s.softFail(gctx, "uploaded files", eventID, err)
			return nil
		}
		d.Files = files
		return nil
	})
	g.Go(func() error {
		fb, err := s.feedback.Feedback(gctx, eventID, viewerID)
		if err != nil {
			s.softFail(gctx, "feedback", eventID, err)
			return nil
		}
		d.Feedback = fb
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			m, err := s.membership(gctx, viewerID)
			if err != nil {
				s.softFail(gctx, "membership", eventID, err)
				return nil
			}
			membership = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ev := d.Event
	if membership != nil {
		d.Joined = domain.Has(membership.Joined, ev.ID)
		d.Bookmarked = domain.Has(membership.Bookmarked, ev.ID)
	}
	d.IsOrganizer = viewerID != "" && ev.OrganizerID == viewerID
	d.IsSpeaker = viewerID != "" && ev.IsSpeaker(viewerID)

	d.Speakers = s.people(ctx, ev.KeynoteSpeakers, "speakers", eventID)
	d.Moderators = s.people(ctx, ev.Moderators, "moderators", eventID)
	return d, nil
}

func (s *eventService) people(ctx context.Context, ids []string, what, eventID string) []*domain.UserProfile {
	if len(ids) == 0 {
		return []*domain.UserProfile{}
	}
	users, err := s.backend.ListUsersByIDs(ctx, ids)
	if err != nil {
		s.softFail(ctx, what, eventID, err)
		return []*domain.UserProfile{}
	}
	return users
}

func (s *eventService) softFail(ctx context.Context, what, eventID string, err error) {
	s.logger.WarnContext(ctx, "event detail panel unavailable", "panel", what, "event_id", eventID, "err", err)
}

func (s *eventService) Create(ctx context.Context, organizer *domain.UserProfile, in domain.EventInput) (*domain.Event, error) {
	now := s.now()
	if err := in.Validate(now, true); err != nil {
		return nil, err
	}
	if organizer == nil || organizer.UserID == "" {
		return nil, domain.ErrNoSession
	}
	ev := &domain.Event{}
	in.Apply(ev)
	ev.OrganizerID = organizer.UserID
	ev.OrganizerName = organizer.DisplayName()
	ev.ContactEmail = organizer.Email
	ev.CreatedAt = now.UTC().Format(CreatedAtLayout)

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	created, err := s.backend.CreateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event created", "event_id", created.ID, "organizer_id", organizer.UserID)
	return created, nil
}

func (s *eventService) Update(ctx context.Context, eventID string, in domain.EventInput) (*domain.Event, error) {
	if err := in.Validate(s.now(), false); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.backend.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	in.Apply(ev)
	return s.backend.UpdateEvent(ctx, eventID, ev)
}

func (s *eventService) Delete(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.backend.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", eventID)
	return nil
}

func (s *eventService) Join(ctx context.Context, userID, eventID string) (*domain.Membership, error) {
	return s.mutate(ctx, userID, func(ctx context.Context) error {
		return s.backend.JoinEvent(ctx, userID, eventID)
	})
}

func (s *eventService) Leave(ctx context.Context, userID, eventID string) (*domain.Membership, error) {
	return s.mutate(ctx, userID, func(ctx context.Context) error {
		return s.backend.LeaveEvent(ctx, userID, eventID)
	})
}

func (s *eventService) Bookmark(ctx context.Context, userID, eventID string) (*domain.Membership, error) {
	return s.mutate(ctx, userID, func(ctx context.Context) error {
		return s.backend.BookmarkEvent(ctx, userID, eventID)
	})
}

func (s *eventService) Unbookmark(ctx context.Context, userID, eventID string) (*domain.Membership, error) {
	return s.mutate(ctx, userID, func(ctx context.Context) error {
		return s.backend.RemoveEventBookmark(ctx, userID, eventID)
	})
}

// mutate runs change and then re-fetches both lists; local state is never patched optimistically.
func (s *eventService) mutate(ctx context.Context, userID string, change func(context.Context) error) (*domain.Membership, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := change(ctx); err != nil {
		return nil, err
	}
	return s.membership(ctx, userID)
}

func (s *eventService) Membership(ctx context.Context, userID string) (*domain.Membership, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.membership(ctx, userID)
}

func (s *eventService) membership(ctx context.Context, userID string) (*domain.Membership, error) {
	m := &domain.Membership{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.Joined, err = s.backend.ListRegisteredEvents(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		m.Bookmarked, err = s.backend.ListBookmarkedEvents(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return m, nil
}

// Validation messages for speaker file uploads.
const (
	MsgFileRequired = "Please choose a file to upload."
	MsgFileMissing  = "No file selected for deletion."
)

func (s *eventService) UploadFile(ctx context.Context, eventID, userID, fileName string, r io.Reader) (*domain.UploadedFile, error) {
	if strings.TrimSpace(fileName) == "" || r == nil {
		return nil, domain.NewValidationError([]string{MsgFileRequired})
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	f, err := s.backend.UploadSpeakerFile(ctx, eventID, userID, fileName, r)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "speaker file uploaded", "event_id", eventID, "user_id", userID)
	return f, nil
}

func (s *eventService) DeleteFile(ctx context.Context, eventID, userID, fileURL string) error {
	if strings.TrimSpace(fileURL) == "" {
		return domain.NewValidationError([]string{MsgFileMissing})
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.backend.DeleteSpeakerFile(ctx, eventID, userID, fileURL)
}
