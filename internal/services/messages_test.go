package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"confernet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendRefetchesHistory(t *testing.T) {
	backend := newFakeBackend()
	svc := NewMessageService(backend, discardLogger(), time.Second)
	ctx := context.Background()

	_, err := svc.Send(ctx, "u1", "u2", "  ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, backend.Calls())

	history, err := svc.Send(ctx, "u1", "u2", "hello")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, []string{"SendMessage", "GetChatHistory"}, backend.Calls())
}

func TestMessageService_Inbox(t *testing.T) {
	backend := newFakeBackend()
	backend.addUser(&domain.UserProfile{UserID: "u2", Name: "Bea"})
	svc := NewMessageService(backend, discardLogger(), time.Second)
	ctx := context.Background()

	_, err := svc.Send(ctx, "u1", "u2", "hi Bea")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "u3", "u1", "hi from u3")
	require.NoError(t, err)

	inbox, err := svc.Inbox(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "u3", inbox[0].PartnerID)
	assert.Equal(t, "u3", inbox[0].PartnerName)
	assert.Equal(t, "Bea", inbox[1].PartnerName)

	backend.errs["ListUsersByIDs"] = errors.New("boom")
	inbox, err = svc.Inbox(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u2", inbox[1].PartnerName)
}

func TestMessageService_Thread(t *testing.T) {
	backend := newFakeBackend()
	backend.addUser(&domain.UserProfile{UserID: "u2", Name: "Bea"})
	svc := NewMessageService(backend, discardLogger(), time.Second)

	thread, err := svc.Thread(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "Bea", thread.Partner.Name)
	assert.Empty(t, thread.Messages)

	_, err = svc.Thread(context.Background(), "u1", "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.History(context.Background(), "", "u2")
	require.ErrorIs(t, err, domain.ErrNoSession)
}
