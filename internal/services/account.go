package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

type accountService struct {
	backend        domain.Backend
	email          domain.EmailService
	appURL         string
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAccountService(backend domain.Backend, email domain.EmailService, appURL string, logger *slog.Logger, timeout time.Duration) domain.AccountService {
	return &accountService{
		backend:        backend,
		email:          email,
		appURL:         strings.TrimSuffix(appURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *accountService) SignUp(ctx context.Context, id domain.IdentitySession, hints domain.HintAccessor, in *domain.SignupInput) (*domain.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// The flag must be visible before the session is published, or the gate would send the new
	// user home before the profile exists.
	if err := hints.Save(ctx, domain.SessionHints{SignupInProgress: true}); err != nil {
		return nil, err
	}
	sess, err := id.SignUp(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		if clearErr := hints.Clear(ctx); clearErr != nil {
			s.logger.WarnContext(ctx, "failed to clear signup hints", "err", clearErr)
		}
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if err := hints.Save(ctx, domain.SessionHints{
		UserID:           sess.UserID,
		DisplayName:      name,
		Role:             in.Role.String(),
		SignupInProgress: true,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to save signup hints", "err", err)
	}

	if err := s.backend.RegisterUser(ctx, in.Registration(sess.UserID)); err != nil {
		// No profile was created; drop the identity session so the gate does not send the user home.
		id.SignOut()
		if clearErr := hints.Clear(ctx); clearErr != nil {
			s.logger.WarnContext(ctx, "failed to clear signup hints", "err", clearErr)
		}
		return nil, err
	}

	if err := s.email.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{
		Email:  sess.Email,
		Name:   name,
		Role:   in.Role.String(),
		AppURL: s.appURL,
	}); err != nil {
		s.logger.WarnContext(ctx, "welcome email not sent", "err", err)
	}
	return sess, nil
}

func (s *accountService) FinishSignup(ctx context.Context, hints domain.HintAccessor) error {
	h := hints.Get()
	if !h.SignupInProgress {
		return nil
	}
	h.SignupInProgress = false
	return hints.Save(ctx, h)
}

func (s *accountService) SignIn(ctx context.Context, id domain.IdentitySession, hints domain.HintAccessor, email, password string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sess, err := id.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "sign-in failed", "err", err)
		return nil, &domain.AuthError{Code: "UNAVAILABLE", Message: domain.MsgInvalidLogin, Err: err}
	}

	h := domain.SessionHints{UserID: sess.UserID, DisplayName: sess.Email}
	if user, err := s.backend.GetUser(ctx, sess.UserID); err != nil {
		s.logger.WarnContext(ctx, "profile unavailable after sign-in", "err", err)
	} else {
		h.DisplayName = user.DisplayName()
		h.Role = user.Role.String()
	}
	if err := hints.Save(ctx, h); err != nil {
		s.logger.WarnContext(ctx, "failed to save sign-in hints", "err", err)
	}
	return sess, nil
}

func (s *accountService) SignOut(ctx context.Context, id domain.IdentitySession, hints domain.HintAccessor) error {
	id.SignOut()
	return hints.Clear(ctx)
}

func (s *accountService) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p := &domain.Profile{}
	var all []*domain.Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.User, err = s.backend.GetUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		p.Joined, err = s.backend.ListRegisteredEvents(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		p.Bookmarked, err = s.backend.ListBookmarkedEvents(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		all, err = s.backend.ListEvents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p.Organized = []*domain.Event{}
	p.Speaking = []*domain.Event{}
	for _, e := range all {
		if e.OrganizerID == userID {
			p.Organized = append(p.Organized, e)
		}
		if e.IsSpeaker(userID) {
			p.Speaking = append(p.Speaking, e)
		}
	}
	return p, nil
}
