package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

// Validation messages for the feedback panel.
const (
	MsgCommentRequired = "Please write a comment before submitting."
	MsgRatingRange     = "Please pick a rating from 1 to 5."
)

type feedbackService struct {
	backend        domain.Backend
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewFeedbackService(backend domain.Backend, logger *slog.Logger, timeout time.Duration) domain.FeedbackService {
	return &feedbackService{backend: backend, logger: logger, contextTimeout: timeout}
}

// Feedback loads comments and the rating summary. HasCommented only reflects what the backend
// returned, so it can lag behind a comment that was just posted.
func (s *feedbackService) Feedback(ctx context.Context, eventID, viewerID string) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.load(ctx, eventID, viewerID)
}

func (s *feedbackService) load(ctx context.Context, eventID, viewerID string) (*domain.Feedback, error) {
	var (
		comments []*domain.Comment
		ratings  *domain.RatingSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		comments, err = s.backend.ListComments(gctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		ratings, err = s.backend.GetRatingSummary(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = &domain.RatingSummary{}
	}

	fb := &domain.Feedback{Comments: make([]*domain.CommentView, 0, len(comments)), Ratings: ratings}
	names := s.authorNames(ctx, comments)
	for _, c := range comments {
		name := names[c.UserID]
		if name == "" {
			name = "Anonymous"
		}
		fb.Comments = append(fb.Comments, &domain.CommentView{Comment: c, AuthorName: name})
		if viewerID != "" && c.UserID == viewerID {
			fb.HasCommented = true
		}
	}
	return fb, nil
}

func (s *feedbackService) authorNames(ctx context.Context, comments []*domain.Comment) map[string]string {
	names := map[string]string{}
	var ids []string
	for _, c := range comments {
		if _, ok := names[c.UserID]; !ok {
			names[c.UserID] = ""
			ids = append(ids, c.UserID)
		}
	}
	if len(ids) == 0 {
		return names
	}
	users, err := s.backend.ListUsersByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "comment authors unavailable", "err", err)
		return names
	}
	for _, u := range users {
		names[u.UserID] = u.DisplayName()
	}
	return names
}

func (s *feedbackService) PostComment(ctx context.Context, eventID, userID, text string) (*domain.Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError([]string{MsgCommentRequired})
	}
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.backend.PostComment(ctx, eventID, userID, text); err != nil {
		return nil, err
	}
	return s.load(ctx, eventID, userID)
}

func (s *feedbackService) Rate(ctx context.Context, eventID, userID string, rating int) (*domain.Feedback, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.NewValidationError([]string{MsgRatingRange})
	}
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.backend.PostRating(ctx, eventID, userID, rating); err != nil {
		return nil, err
	}
	return s.load(ctx, eventID, userID)
}
