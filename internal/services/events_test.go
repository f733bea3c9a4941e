package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"confernet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestEventService(backend *fakeBackend) *eventService {
	feedback := NewFeedbackService(backend, discardLogger(), time.Second)
	return newEventService(backend, feedback, discardLogger(), time.Second, func() time.Time { return fixedNow })
}

func futureInput() domain.EventInput {
	start := fixedNow.Add(48 * time.Hour).In(time.Local)
	return domain.EventInput{
		Name:           "GopherCon",
		StartDate:      start.Format(domain.EventTimeLayout),
		EndDate:        start.Add(8 * time.Hour).Format(domain.EventTimeLayout),
		City:           "Berlin",
		MaxAttendees:   "200",
		KeynoteSpeaker: "sp1",
	}
}

func TestEventService_Create(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestEventService(backend)
	organizer := &domain.UserProfile{UserID: "org1", Name: "Olga", Email: "olga@example.com"}

	ev, err := svc.Create(context.Background(), organizer, futureInput())
	require.NoError(t, err)
	assert.Equal(t, "ev-new", ev.ID)
	assert.Equal(t, "org1", ev.OrganizerID)
	assert.Equal(t, "Olga", ev.OrganizerName)
	assert.Equal(t, "olga@example.com", ev.ContactEmail)
	assert.Equal(t, "2026-03-01T09:30:00.000Z", ev.CreatedAt)
	assert.Equal(t, []string{"sp1"}, ev.KeynoteSpeakers)
	require.NotNil(t, ev.MaxAttendees)
	assert.Equal(t, 200, *ev.MaxAttendees)
	assert.Equal(t, "USD", ev.Currency)
}

func TestEventService_Create_InvalidInputMakesNoCall(t *testing.T) {
	past := fixedNow.Add(-time.Hour).In(time.Local)
	tests := []struct {
		name string
		edit func(*domain.EventInput)
		want string
	}{
		{"missing name", func(in *domain.EventInput) { in.Name = " " }, domain.MsgEventNameRequired},
		{"missing dates", func(in *domain.EventInput) { in.EndDate = "" }, domain.MsgEventDatesMissing},
		{"start in the past", func(in *domain.EventInput) {
			in.StartDate = past.Format(domain.EventTimeLayout)
		}, domain.MsgEventDatesInvalid},
		{"end before start", func(in *domain.EventInput) { in.EndDate, in.StartDate = in.StartDate, in.EndDate }, domain.MsgEventDatesInvalid},
		{"bad capacity", func(in *domain.EventInput) { in.MaxAttendees = "-3" }, domain.MsgEventCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			svc := newTestEventService(backend)
			in := futureInput()
			tt.edit(&in)

			_, err := svc.Create(context.Background(), &domain.UserProfile{UserID: "org1"}, in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Problems, tt.want)
			assert.Empty(t, backend.Calls())
		})
	}
}

func TestEventService_Create_RequiresOrganizer(t *testing.T) {
	backend := newFakeBackend()
	_, err := newTestEventService(backend).Create(context.Background(), nil, futureInput())
	require.ErrorIs(t, err, domain.ErrNoSession)
	assert.Empty(t, backend.Calls())
}

func TestEventService_Update(t *testing.T) {
	backend := newFakeBackend()
	backend.addEvent(&domain.Event{ID: "e1", Name: "Old", OrganizerID: "org1", CreatedAt: "2025-01-01T00:00:00.000Z"})
	svc := newTestEventService(backend)

	// An event that already started can still be edited.
	in := futureInput()
	start := fixedNow.Add(-2 * time.Hour).In(time.Local)
	in.StartDate = start.Format(domain.EventTimeLayout)
	in.EndDate = start.Add(4 * time.Hour).Format(domain.EventTimeLayout)
	in.Name = "New"

	ev, err := svc.Update(context.Background(), "e1", in)
	require.NoError(t, err)
	assert.Equal(t, "New", ev.Name)
	assert.Equal(t, "org1", ev.OrganizerID)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", ev.CreatedAt)
	assert.Equal(t, []string{"GetEvent", "UpdateEvent"}, backend.Calls())

	in.EndDate = in.StartDate
	_, err = svc.Update(context.Background(), "e1", in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{domain.MsgEventEndBeforeStart}, verr.Problems)
}

func TestEventService_MutationsRefetchMembership(t *testing.T) {
	backend := newFakeBackend()
	backend.addEvent(&domain.Event{ID: "e1"})
	backend.addEvent(&domain.Event{ID: "e2"})
	svc := newTestEventService(backend)
	ctx := context.Background()

	m, err := svc.Join(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.True(t, domain.Has(m.Joined, "e1"))
	assert.Subset(t, backend.Calls(), []string{"JoinEvent", "ListRegisteredEvents", "ListBookmarkedEvents"})

	m, err = svc.Bookmark(ctx, "u1", "e2")
	require.NoError(t, err)
	assert.True(t, domain.Has(m.Bookmarked, "e2"))
	assert.True(t, domain.Has(m.Joined, "e1"))

	m, err = svc.Leave(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.False(t, domain.Has(m.Joined, "e1"))

	m, err = svc.Unbookmark(ctx, "u1", "e2")
	require.NoError(t, err)
	assert.Empty(t, m.Bookmarked)

	calls := backend.Calls()
	assert.Equal(t, "ListRegisteredEvents", firstAfter(calls, "RemoveEventBookmark", "ListRegisteredEvents"))
}

func TestEventService_MutationFailureSkipsRefetch(t *testing.T) {
	backend := newFakeBackend()
	backend.errs["JoinEvent"] = errors.New("Event is full")
	svc := newTestEventService(backend)

	_, err := svc.Join(context.Background(), "u1", "e1")
	require.EqualError(t, err, "Event is full")
	assert.Equal(t, []string{"JoinEvent"}, backend.Calls())

	_, err = svc.Join(context.Background(), "", "e1")
	require.ErrorIs(t, err, domain.ErrNoSession)
}

// firstAfter returns want if it occurs after marker in calls, or "".
func firstAfter(calls []string, marker, want string) string {
	for i, c := range calls {
		if c != marker {
			continue
		}
		for _, next := range calls[i+1:] {
			if next == want {
				return want
			}
		}
	}
	return ""
}

func TestEventService_Detail(t *testing.T) {
	backend := newFakeBackend()
	backend.addEvent(&domain.Event{ID: "e1", OrganizerID: "org1", KeynoteSpeakers: []string{"sp1"}, Moderators: []string{"mod1"}})
	backend.addUser(&domain.UserProfile{UserID: "sp1", Name: "Sam", Role: domain.RoleSpeaker})
	backend.addUser(&domain.UserProfile{UserID: "mod1", Name: "Mo", Role: domain.RoleAttendee})
	backend.addUser(&domain.UserProfile{UserID: "u1", Name: "Una", Role: domain.RoleAttendee})
	backend.attendees["e1"] = []string{"u1"}
	backend.joined["u1"] = []string{"e1"}
	backend.comments["e1"] = []*domain.Comment{{UserID: "u1", Text: "great"}}
	backend.ratings["e1"] = []int{4, 5}
	backend.files["e1"] = map[string][]*domain.UploadedFile{"sp1": {{FileURL: "https://f/a.pdf", UploadedBy: "sp1"}}}
	svc := newTestEventService(backend)

	d, err := svc.Detail(context.Background(), "e1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "e1", d.Event.ID)
	assert.Equal(t, []string{"u1"}, d.AttendeeIDs)
	assert.True(t, d.Joined)
	assert.False(t, d.Bookmarked)
	assert.False(t, d.IsOrganizer)
	assert.False(t, d.IsSpeaker)
	require.Len(t, d.Speakers, 1)
	assert.Equal(t, "Sam", d.Speakers[0].Name)
	require.Len(t, d.Moderators, 1)
	assert.Len(t, d.Files["sp1"], 1)
	assert.True(t, d.Feedback.HasCommented)
	assert.Equal(t, "Una", d.Feedback.Comments[0].AuthorName)
	assert.InDelta(t, 4.5, d.Feedback.Ratings.AverageRating, 0.001)

	d, err = svc.Detail(context.Background(), "e1", "org1")
	require.NoError(t, err)
	assert.True(t, d.IsOrganizer)
}

func TestEventService_Detail_PanelsSoftFail(t *testing.T) {
	backend := newFakeBackend()
	backend.addEvent(&domain.Event{ID: "e1", KeynoteSpeakers: []string{"sp1"}})
	backend.errs["ListEventAttendees"] = errors.New("boom")
	backend.errs["ListComments"] = errors.New("boom")
	backend.errs["ListUsersByIDs"] = errors.New("boom")
	svc := newTestEventService(backend)

	d, err := svc.Detail(context.Background(), "e1", "")
	require.NoError(t, err)
	assert.Empty(t, d.AttendeeIDs)
	assert.Empty(t, d.Speakers)
	assert.Empty(t, d.Feedback.Comments)
}

func TestEventService_Detail_NotFound(t *testing.T) {
	_, err := newTestEventService(newFakeBackend()).Detail(context.Background(), "missing", "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_Files(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestEventService(backend)
	ctx := context.Background()

	_, err := svc.UploadFile(ctx, "e1", "sp1", "", strings.NewReader("x"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, backend.Calls())

	f, err := svc.UploadFile(ctx, "e1", "sp1", "slides.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "slides.pdf", f.FileName)

	require.ErrorAs(t, svc.DeleteFile(ctx, "e1", "sp1", ""), &verr)
	require.NoError(t, svc.DeleteFile(ctx, "e1", "sp1", f.FileURL))
	assert.Equal(t, []string{"UploadSpeakerFile", "DeleteSpeakerFile"}, backend.Calls())
}
