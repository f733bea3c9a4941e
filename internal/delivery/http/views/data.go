package views

import (
	"confernet/internal/app"
	"confernet/internal/delivery/http/helpers"
	"confernet/internal/domain"
)

type LoginData struct {
	Email string
}

type SignupData struct {
	Input domain.SignupInput
	Roles []domain.Role
}

// EventForm is the create/edit event form with its pickers.
type EventForm struct {
	Action  string
	Input   domain.EventInput
	Options *domain.EventFormOptions
}

type HomeData struct {
	Entries []*domain.ScheduleEntry
	// Form is set for organizers.
	Form *EventForm
}

type EventData struct {
	Detail        *domain.EventDetail
	Form          *EventForm
	AttendeeCount int
	Full          bool
	// MyFiles are the viewer's own uploads, shown with delete buttons.
	MyFiles []*domain.UploadedFile
}

type AccountTab struct {
	Key    string
	Label  string
	Events []*domain.Event
}

type AccountData struct {
	User   *domain.UserProfile
	Tabs   []AccountTab
	Active string
}

type PeopleData struct {
	Users []*domain.UserProfile
	Role  domain.Role
	Roles []domain.Role
	Meta  helpers.PaginationMeta
}

type MessagesData struct {
	Conversations []*domain.ConversationView
	PollMillis    int64
}

type ThreadData struct {
	Thread     *domain.Thread
	ViewerID   string
	PollMillis int64
}

type ScheduleData struct {
	Heading string
	Entries []*domain.ScheduleEntry
	Empty   string
}

type VenueData struct {
	Venues   []domain.Venue
	Selected *domain.Venue
}

type InteractionData struct {
	Questions []app.Question
}
