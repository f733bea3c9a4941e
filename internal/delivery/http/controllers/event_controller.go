package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

// maxUploadBytes caps a speaker file upload.
const maxUploadBytes = 32 << 20

type EventController struct {
	*Base
	Events   domain.EventService
	Feedback domain.FeedbackService
	Schedule domain.ScheduleService
	People   domain.PeopleService
}

func NewEventController(base *Base, events domain.EventService, feedback domain.FeedbackService, schedule domain.ScheduleService, people domain.PeopleService) *EventController {
	return &EventController{Base: base, Events: events, Feedback: feedback, Schedule: schedule, People: people}
}

// Home lists upcoming events. Organizers also get the create-event form.
func (c *EventController) Home(w http.ResponseWriter, r *http.Request) {
	c.renderHome(w, r, http.StatusOK, nil, nil)
}

func (c *EventController) renderHome(w http.ResponseWriter, r *http.Request, status int, input *domain.EventInput, notice *domain.Notice) {
	userID := viewerID(r)
	data := views.HomeData{}
	entries, err := c.Schedule.Schedule(r.Context(), userID)
	if err != nil {
		c.logFailure(r, err)
		if notice == nil {
			n := domain.ErrorNotice(err)
			notice = &n
		}
	}
	data.Entries = entries

	if c.isOrganizer(r, userID) {
		form := &views.EventForm{Action: "/events"}
		if input != nil {
			form.Input = *input
		}
		opts, err := c.People.FormOptions(r.Context())
		if err != nil {
			c.logFailure(r, err)
			opts = &domain.EventFormOptions{Venues: c.Schedule.Venues()}
		}
		form.Options = opts
		data.Form = form
	}
	c.renderNotice(w, r, status, "home", "Home", data, notice)
}

// isOrganizer trusts the role hint when it is set and asks the backend otherwise.
func (c *EventController) isOrganizer(r *http.Request, userID string) bool {
	if userID == "" {
		return false
	}
	if role := viewer(r).Role; role != "" {
		return domain.ParseRole(role) == domain.RoleOrganizer
	}
	u, err := c.People.User(r.Context(), userID)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "role lookup failed", "err", err)
		return false
	}
	return u.Role == domain.RoleOrganizer
}

// Detail renders one event with the edit form for its organizer.
func (c *EventController) Detail(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID := viewerID(r)
	d, err := c.Events.Detail(r.Context(), eventID, userID)
	if err != nil {
		c.fail(w, r, "/home", err)
		return
	}
	data := views.EventData{Detail: d, AttendeeCount: len(d.AttendeeIDs)}
	if d.Event.MaxAttendees != nil && !d.Joined {
		data.Full = len(d.AttendeeIDs) >= *d.Event.MaxAttendees
	}
	if d.IsSpeaker {
		data.MyFiles = d.Files[userID]
	}
	if d.IsOrganizer {
		opts, err := c.People.FormOptions(r.Context())
		if err != nil {
			c.logFailure(r, err)
			opts = &domain.EventFormOptions{Venues: c.Schedule.Venues()}
		}
		data.Form = &views.EventForm{Action: "/events/" + eventID, Input: domain.InputFromEvent(d.Event), Options: opts}
	}
	c.render(w, r, http.StatusOK, "event", d.Event.Name, data)
}

func eventInput(r *http.Request) domain.EventInput {
	return domain.EventInput{
		Name:            r.PostFormValue("name"),
		StartDate:       r.PostFormValue("startDate"),
		EndDate:         r.PostFormValue("endDate"),
		Venue:           r.PostFormValue("venue"),
		City:            r.PostFormValue("city"),
		Address:         r.PostFormValue("address"),
		Country:         r.PostFormValue("country"),
		VenueMapURL:     r.PostFormValue("venueMapUrl"),
		IsOnline:        r.PostFormValue("isOnline") == "true",
		StreamURL:       r.PostFormValue("streamUrl"),
		MaxAttendees:    r.PostFormValue("maxAttendees"),
		Announcement:    r.PostFormValue("announcement"),
		RegistrationFee: r.PostFormValue("registrationFee"),
		Currency:        r.PostFormValue("currency"),
		PaymentMethod:   r.PostFormValue("paymentMethod"),
		KeynoteSpeaker:  r.PostFormValue("keynoteSpeaker"),
		Moderator:       r.PostFormValue("moderator"),
	}
}

// Create validates locally first; an invalid form is shown again and never reaches the backend.
// The organizer is taken from the session so no lookup precedes validation.
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	inst, sess := session(r)
	if sess == nil {
		c.fail(w, r, "/login", domain.ErrNoSession)
		return
	}
	organizer := &domain.UserProfile{UserID: sess.UserID, Email: sess.Email}
	if h := inst.Hints.Get(); h.UserID == sess.UserID {
		organizer.Name = h.DisplayName
	}
	in := eventInput(r)
	ev, err := c.Events.Create(r.Context(), organizer, in)
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(err)
		c.renderHome(w, r, http.StatusBadRequest, &in, &n)
		return
	}
	c.done(w, r, "/home/"+ev.ID, success("Event created!"))
}

func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if _, err := c.Events.Update(r.Context(), eventID, eventInput(r)); err != nil {
		c.fail(w, r, "/home/"+eventID, err)
		return
	}
	c.done(w, r, "/home/"+eventID, success("Event updated!"))
}

func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if err := c.Events.Delete(r.Context(), eventID); err != nil {
		c.fail(w, r, "/home/"+eventID, err)
		return
	}
	c.done(w, r, "/home", success("Event deleted."))
}

type membershipAction func(ctx context.Context, userID, eventID string) (*domain.Membership, error)

// membership runs a join/leave/bookmark action. The service re-fetches membership afterwards so
// the next page reflects the backend, not a local guess.
func (c *EventController) membership(w http.ResponseWriter, r *http.Request, action membershipAction, msg string) {
	eventID := r.PathValue("eventID")
	back := localPath(r.PostFormValue("next"), "/home/"+eventID)
	if _, err := action(r.Context(), viewerID(r), eventID); err != nil {
		c.fail(w, r, back, err)
		return
	}
	c.done(w, r, back, success(msg))
}

func (c *EventController) Join(w http.ResponseWriter, r *http.Request) {
	c.membership(w, r, c.Events.Join, "You joined the event.")
}

func (c *EventController) Leave(w http.ResponseWriter, r *http.Request) {
	c.membership(w, r, c.Events.Leave, "You left the event.")
}

func (c *EventController) Bookmark(w http.ResponseWriter, r *http.Request) {
	c.membership(w, r, c.Events.Bookmark, "Event bookmarked.")
}

func (c *EventController) Unbookmark(w http.ResponseWriter, r *http.Request) {
	c.membership(w, r, c.Events.Unbookmark, "Bookmark removed.")
}

func (c *EventController) Comment(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if _, err := c.Feedback.PostComment(r.Context(), eventID, viewerID(r), r.PostFormValue("comment")); err != nil {
		c.fail(w, r, "/home/"+eventID, err)
		return
	}
	c.done(w, r, "/home/"+eventID, success("Comment posted."))
}

func (c *EventController) Rate(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	// An unparseable rating becomes 0, which the service rejects as out of range.
	rating, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("rating")))
	if _, err := c.Feedback.Rate(r.Context(), eventID, viewerID(r), rating); err != nil {
		c.fail(w, r, "/home/"+eventID, err)
		return
	}
	c.done(w, r, "/home/"+eventID, success("Thanks for rating!"))
}

func (c *EventController) Upload(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	back := "/home/" + eventID
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		c.fail(w, r, back, domain.NewValidationError([]string{"The file is too large or the upload was interrupted."}))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		c.fail(w, r, back, domain.NewValidationError([]string{"Please choose a file to upload."}))
		return
	}
	defer file.Close()
	if _, err := c.Events.UploadFile(r.Context(), eventID, viewerID(r), header.Filename, file); err != nil {
		c.fail(w, r, back, err)
		return
	}
	c.done(w, r, back, success("File uploaded."))
}

func (c *EventController) DeleteFile(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if err := c.Events.DeleteFile(r.Context(), eventID, viewerID(r), r.PostFormValue("fileUrl")); err != nil {
		c.fail(w, r, "/home/"+eventID, err)
		return
	}
	c.done(w, r, "/home/"+eventID, success("File deleted."))
}
