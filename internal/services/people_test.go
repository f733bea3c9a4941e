package services

import (
	"context"
	"testing"
	"time"

	"confernet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeopleService(t *testing.T) {
	backend := newFakeBackend()
	backend.addUser(&domain.UserProfile{UserID: "o1", Role: domain.RoleOrganizer})
	backend.addUser(&domain.UserProfile{UserID: "s1", Role: domain.RoleSpeaker})
	backend.addUser(&domain.UserProfile{UserID: "a1", Role: domain.RoleAttendee})
	venues := fakeVenues{{Name: "Hall", City: "Oslo"}}
	svc := NewPeopleService(backend, venues, time.Second)
	ctx := context.Background()

	all, err := svc.Directory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	speakers, err := svc.Directory(ctx, domain.RoleSpeaker)
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "s1", speakers[0].UserID)

	opts, err := svc.FormOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts.Speakers, 1)
	require.Len(t, opts.Moderators, 1)
	assert.Equal(t, "a1", opts.Moderators[0].UserID)
	assert.Equal(t, []domain.Venue(venues), opts.Venues)

	_, err = svc.User(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
