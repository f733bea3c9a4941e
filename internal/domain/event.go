package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventTimeLayout is the wire layout of event start and end times (an HTML datetime-local value).
const EventTimeLayout = "2006-01-02T15:04"

var eventTimeLayouts = []string{EventTimeLayout, "2006-01-02T15:04:05", time.RFC3339}

// EventTime is a wall-clock time as entered by organizers. The zero value encodes as "".
type EventTime struct {
	time.Time
}

// ParseEventTime parses s using the accepted layouts, in the local time zone.
func ParseEventTime(s string) (EventTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return EventTime{Time: t}, nil
		}
	}
	return EventTime{}, fmt.Errorf("invalid date/time %q", s)
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(EventTimeLayout))
}

func (t *EventTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseEventTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// String formats the time for the datetime-local input, or "" when unset.
func (t EventTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(EventTimeLayout)
}

// Event is a conference event as stored by the backend.
type Event struct {
	ID              string    `json:"id" validate:"required"`
	Name            string    `json:"name"`
	StartDate       EventTime `json:"startDate"`
	EndDate         EventTime `json:"endDate"`
	Venue           string    `json:"venue,omitempty"`
	City            string    `json:"city,omitempty"`
	Address         string    `json:"address,omitempty"`
	Country         string    `json:"country,omitempty"`
	VenueMapURL     string    `json:"venueMapUrl,omitempty"`
	IsOnline        bool      `json:"isOnline"`
	StreamURL       string    `json:"streamUrl,omitempty"`
	MaxAttendees    *int      `json:"maxAttendees"`
	Announcement    string    `json:"announcement,omitempty"`
	RegistrationFee float64   `json:"registrationFee"`
	Currency        string    `json:"currency,omitempty"`
	PaymentMethods  string    `json:"paymentMethods,omitempty"`
	KeynoteSpeakers []string  `json:"keynoteSpeakers"`
	Moderators      []string  `json:"moderators"`
	OrganizerID     string    `json:"organizerId"`
	OrganizerName   string    `json:"organizerName,omitempty"`
	ContactEmail    string    `json:"contactEmail,omitempty"`
	CreatedAt       string    `json:"createdAt,omitempty"`
}

// IsSpeaker reports whether userID is one of the event's keynote speakers.
func (e *Event) IsSpeaker(userID string) bool {
	for _, id := range e.KeynoteSpeakers {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFree reports whether the event has no registration fee.
func (e *Event) IsFree() bool {
	return e.RegistrationFee <= 0
}

// EventInput is the create/edit event form as submitted by an organizer.
type EventInput struct {
	Name            string
	StartDate       string
	EndDate         string
	Venue           string
	City            string
	Address         string
	Country         string
	VenueMapURL     string
	IsOnline        bool
	StreamURL       string
	MaxAttendees    string
	Announcement    string
	RegistrationFee string
	Currency        string
	PaymentMethod   string
	KeynoteSpeaker  string
	Moderator       string
}

// Validation messages shown to the organizer.
const (
	MsgEventNameRequired   = "Event name is required."
	MsgEventDatesMissing   = "Please select both start and end date/time."
	MsgEventDatesInvalid   = "Invalid date/time. Start must be in the future and end must be after start."
	MsgEventEndBeforeStart = "Invalid date/time. End must be after start."
	MsgEventCapacity       = "Max attendees must be a positive whole number."
	MsgEventFee            = "Registration fee must be a non-negative number."
)

// Validate checks required fields and the time window. requireFuture is set for new events:
// an existing event may be edited after it started, but its end must still follow its start.
func (in EventInput) Validate(now time.Time, requireFuture bool) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, MsgEventNameRequired)
	}
	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" {
		problems = append(problems, MsgEventDatesMissing)
	} else {
		start, errStart := ParseEventTime(in.StartDate)
		end, errEnd := ParseEventTime(in.EndDate)
		switch {
		case errStart != nil || errEnd != nil:
			problems = append(problems, MsgEventDatesInvalid)
		case requireFuture && (!start.After(now) || !end.After(start.Time)):
			problems = append(problems, MsgEventDatesInvalid)
		case !end.After(start.Time):
			problems = append(problems, MsgEventEndBeforeStart)
		}
	}
	if s := strings.TrimSpace(in.MaxAttendees); s != "" {
		if n, err := strconv.Atoi(s); err != nil || n <= 0 {
			problems = append(problems, MsgEventCapacity)
		}
	}
	if s := strings.TrimSpace(in.RegistrationFee); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err != nil || f < 0 {
			problems = append(problems, MsgEventFee)
		}
	}
	return NewValidationError(problems)
}

// Apply copies the form onto ev. Call Validate first; unparsable values are left unset.
func (in EventInput) Apply(ev *Event) {
	ev.Name = strings.TrimSpace(in.Name)
	ev.StartDate, _ = ParseEventTime(in.StartDate)
	ev.EndDate, _ = ParseEventTime(in.EndDate)
	ev.Venue = strings.TrimSpace(in.Venue)
	ev.City = strings.TrimSpace(in.City)
	ev.Address = strings.TrimSpace(in.Address)
	ev.Country = strings.TrimSpace(in.Country)
	ev.VenueMapURL = strings.TrimSpace(in.VenueMapURL)
	ev.IsOnline = in.IsOnline
	ev.StreamURL = strings.TrimSpace(in.StreamURL)
	ev.Announcement = strings.TrimSpace(in.Announcement)
	ev.MaxAttendees = nil
	if n, err := strconv.Atoi(strings.TrimSpace(in.MaxAttendees)); err == nil {
		ev.MaxAttendees = &n
	}
	ev.RegistrationFee, _ = strconv.ParseFloat(strings.TrimSpace(in.RegistrationFee), 64)
	ev.Currency = strings.TrimSpace(in.Currency)
	if ev.Currency == "" {
		ev.Currency = "USD"
	}
	ev.PaymentMethods = strings.TrimSpace(in.PaymentMethod)
	if ev.PaymentMethods == "" {
		ev.PaymentMethods = "Cash"
	}
	ev.KeynoteSpeakers = []string{}
	if s := strings.TrimSpace(in.KeynoteSpeaker); s != "" {
		ev.KeynoteSpeakers = []string{s}
	}
	ev.Moderators = []string{}
	if s := strings.TrimSpace(in.Moderator); s != "" {
		ev.Moderators = []string{s}
	}
}

// InputFromEvent pre-fills the edit form from an existing event.
func InputFromEvent(ev *Event) EventInput {
	in := EventInput{
		Name:          ev.Name,
		StartDate:     ev.StartDate.String(),
		EndDate:       ev.EndDate.String(),
		Venue:         ev.Venue,
		City:          ev.City,
		Address:       ev.Address,
		Country:       ev.Country,
		VenueMapURL:   ev.VenueMapURL,
		IsOnline:      ev.IsOnline,
		StreamURL:     ev.StreamURL,
		Announcement:  ev.Announcement,
		Currency:      ev.Currency,
		PaymentMethod: ev.PaymentMethods,
	}
	if ev.MaxAttendees != nil {
		in.MaxAttendees = strconv.Itoa(*ev.MaxAttendees)
	}
	if ev.RegistrationFee > 0 {
		in.RegistrationFee = strconv.FormatFloat(ev.RegistrationFee, 'f', -1, 64)
	}
	if len(ev.KeynoteSpeakers) > 0 {
		in.KeynoteSpeaker = ev.KeynoteSpeakers[0]
	}
	if len(ev.Moderators) > 0 {
		in.Moderator = ev.Moderators[0]
	}
	return in
}

// EventAPI covers the backend's event endpoints.
type EventAPI interface {
	CreateEvent(ctx context.Context, ev *Event) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListUpcomingEvents(ctx context.Context) ([]*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	UpdateEvent(ctx context.Context, eventID string, ev *Event) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ListEventAttendees(ctx context.Context, eventID string) ([]string, error)

	PostComment(ctx context.Context, eventID, userID, text string) error
	ListComments(ctx context.Context, eventID string) ([]*Comment, error)
	PostRating(ctx context.Context, eventID, userID string, rating int) error
	GetRatingSummary(ctx context.Context, eventID string) (*RatingSummary, error)
}
