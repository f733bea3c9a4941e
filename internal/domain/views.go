package domain

import (
	"context"
	"io"
	"time"
)

// CommentView is a comment with its author's display name resolved.
type CommentView struct {
	*Comment
	AuthorName string
}

// Feedback is the comments and ratings panel of an event.
type Feedback struct {
	Comments     []*CommentView
	Ratings      *RatingSummary
	HasCommented bool
}

// EventDetail is everything the event page shows.
type EventDetail struct {
	Event       *Event
	Speakers    []*UserProfile
	Moderators  []*UserProfile
	AttendeeIDs []string
	Files       map[string][]*UploadedFile
	Feedback    *Feedback

	Joined      bool
	Bookmarked  bool
	IsOrganizer bool
	IsSpeaker   bool
}

// Membership is the viewer's authoritative joined and bookmarked lists, re-fetched after a change.
type Membership struct {
	Joined     []*Event
	Bookmarked []*Event
}

// Has reports whether eventID is in list.
func Has(list []*Event, eventID string) bool {
	for _, e := range list {
		if e.ID == eventID {
			return true
		}
	}
	return false
}

type EventService interface {
	List(ctx context.Context) ([]*Event, error)
	Upcoming(ctx context.Context) ([]*Event, error)
	Detail(ctx context.Context, eventID, viewerID string) (*EventDetail, error)
	// Create validates in locally; an invalid form never reaches the backend.
	Create(ctx context.Context, organizer *UserProfile, in EventInput) (*Event, error)
	Update(ctx context.Context, eventID string, in EventInput) (*Event, error)
	Delete(ctx context.Context, eventID string) error

	Join(ctx context.Context, userID, eventID string) (*Membership, error)
	Leave(ctx context.Context, userID, eventID string) (*Membership, error)
	Bookmark(ctx context.Context, userID, eventID string) (*Membership, error)
	Unbookmark(ctx context.Context, userID, eventID string) (*Membership, error)
	Membership(ctx context.Context, userID string) (*Membership, error)

	UploadFile(ctx context.Context, eventID, userID, fileName string, r io.Reader) (*UploadedFile, error)
	DeleteFile(ctx context.Context, eventID, userID, fileURL string) error
}

type FeedbackService interface {
	Feedback(ctx context.Context, eventID, viewerID string) (*Feedback, error)
	PostComment(ctx context.Context, eventID, userID, text string) (*Feedback, error)
	Rate(ctx context.Context, eventID, userID string, rating int) (*Feedback, error)
}

// ConversationView is an inbox entry with the partner's display name resolved.
type ConversationView struct {
	*Conversation
	PartnerName string
}

// Thread is a chat between the viewer and one partner.
type Thread struct {
	Partner  *UserProfile
	Messages []*Message
}

type MessageService interface {
	Inbox(ctx context.Context, userID string) ([]*ConversationView, error)
	Thread(ctx context.Context, userID, partnerID string) (*Thread, error)
	History(ctx context.Context, userID, partnerID string) ([]*Message, error)
	// Send posts text and returns the re-fetched history.
	Send(ctx context.Context, userID, partnerID, text string) ([]*Message, error)
}

// EventFormOptions are the people an organizer can pick in the event form.
type EventFormOptions struct {
	Speakers   []*UserProfile
	Moderators []*UserProfile
	Venues     []Venue
}

type PeopleService interface {
	// Directory lists users, all of them when role is zero.
	Directory(ctx context.Context, role Role) ([]*UserProfile, error)
	User(ctx context.Context, userID string) (*UserProfile, error)
	FormOptions(ctx context.Context) (*EventFormOptions, error)
}

// ScheduleEntry is one event on a schedule.
type ScheduleEntry struct {
	Event      *Event
	Joined     bool
	Bookmarked bool
}

type ScheduleService interface {
	// Schedule lists upcoming events, flagged with the viewer's membership.
	Schedule(ctx context.Context, userID string) ([]*ScheduleEntry, error)
	// MySchedule merges the viewer's joined and bookmarked events, de-duplicated and ordered by start.
	MySchedule(ctx context.Context, userID string, now time.Time) ([]*ScheduleEntry, error)
	Venues() []Venue
}
