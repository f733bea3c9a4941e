package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"confernet/internal/domain"
)

const MsgMessageRequired = "Message cannot be empty."

type messageService struct {
	backend        domain.Backend
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewMessageService(backend domain.Backend, logger *slog.Logger, timeout time.Duration) domain.MessageService {
	return &messageService{backend: backend, logger: logger, contextTimeout: timeout}
}

// Inbox lists conversations as the backend orders them, with partner names resolved.
// Unknown partners are shown by id.
func (s *messageService) Inbox(ctx context.Context, userID string) ([]*domain.ConversationView, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	convs, err := s.backend.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	if len(convs) > 0 {
		ids := make([]string, 0, len(convs))
		for _, c := range convs {
			ids = append(ids, c.PartnerID)
		}
		users, err := s.backend.ListUsersByIDs(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "inbox partner names unavailable", "err", err)
		}
		for _, u := range users {
			names[u.UserID] = u.DisplayName()
		}
	}

	out := make([]*domain.ConversationView, 0, len(convs))
	for _, c := range convs {
		name := names[c.PartnerID]
		if name == "" {
			name = c.PartnerID
		}
		out = append(out, &domain.ConversationView{Conversation: c, PartnerName: name})
	}
	return out, nil
}

func (s *messageService) Thread(ctx context.Context, userID, partnerID string) (*domain.Thread, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t := &domain.Thread{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.Partner, err = s.backend.GetUser(gctx, partnerID)
		return err
	})
	g.Go(func() (err error) {
		t.Messages, err = s.backend.GetChatHistory(gctx, userID, partnerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *messageService) History(ctx context.Context, userID, partnerID string) ([]*domain.Message, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.backend.GetChatHistory(ctx, userID, partnerID)
}

func (s *messageService) Send(ctx context.Context, userID, partnerID, text string) ([]*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError([]string{MsgMessageRequired})
	}
	if userID == "" {
		return nil, domain.ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.backend.SendMessage(ctx, userID, partnerID, text); err != nil {
		return nil, err
	}
	return s.backend.GetChatHistory(ctx, userID, partnerID)
}
