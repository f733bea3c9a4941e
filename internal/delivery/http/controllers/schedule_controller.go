package controllers

import (
	"net/http"
	"time"

	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

// Empty-state texts of the schedule views.
const (
	MsgScheduleEmpty   = "No upcoming events."
	MsgMyScheduleEmpty = "You haven't RSVP'd to any sessions yet."
)

type ScheduleController struct {
	*Base
	Service domain.ScheduleService
	Venues  domain.VenueCatalog
	now     func() time.Time
}

func NewScheduleController(base *Base, svc domain.ScheduleService, venues domain.VenueCatalog) *ScheduleController {
	return &ScheduleController{Base: base, Service: svc, Venues: venues, now: time.Now}
}

func (c *ScheduleController) Schedule(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.Schedule(r.Context(), viewerID(r))
	c.show(w, r, "Sessions", MsgScheduleEmpty, entries, err)
}

// MySchedule shows the viewer's joined and bookmarked events that have not ended.
func (c *ScheduleController) MySchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.MySchedule(r.Context(), viewerID(r), c.now())
	c.show(w, r, "My Upcoming Schedule", MsgMyScheduleEmpty, entries, err)
}

func (c *ScheduleController) show(w http.ResponseWriter, r *http.Request, heading, empty string, entries []*domain.ScheduleEntry, err error) {
	data := views.ScheduleData{Heading: heading, Entries: entries, Empty: empty}
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(err)
		c.renderNotice(w, r, http.StatusOK, "schedule", heading, data, &n)
		return
	}
	c.render(w, r, http.StatusOK, "schedule", heading, data)
}

// Venue lists the venue catalog. ?map= selects one venue by its map URL.
func (c *ScheduleController) Venue(w http.ResponseWriter, r *http.Request) {
	data := views.VenueData{Venues: c.Venues.List()}
	if m := r.URL.Query().Get("map"); m != "" {
		if v, ok := c.Venues.ByMapURL(m); ok {
			data.Selected = &v
		}
	}
	c.render(w, r, http.StatusOK, "venue", "Venues", data)
}
