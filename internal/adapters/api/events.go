package api

import (
	"context"
	"net/http"

	"confernet/internal/domain"
)

type eventsEnvelope struct {
	Events []*domain.Event `json:"events"`
}

type attendeesEnvelope struct {
	UserIDs []string `json:"userIds"`
}

type commentsEnvelope struct {
	Comments []*domain.Comment `json:"comments"`
}

type commentRequest struct {
	UserID  string `json:"userId"`
	Comment string `json:"comment"`
}

type ratingRequest struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

func (c *Client) CreateEvent(ctx context.Context, ev *domain.Event) (*domain.Event, error) {
	var out domain.Event
	err := c.do(ctx, call{
		op: "create event", method: http.MethodPost, path: "/events",
		body: ev, fallback: "Failed to create event",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.check("create event", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	return c.listEvents(ctx, "list events", "/events", "Failed to fetch events")
}

func (c *Client) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	return c.listEvents(ctx, "list upcoming events", "/events/upcoming", "Failed to fetch upcoming events")
}

func (c *Client) listEvents(ctx context.Context, op, path, fallback string) ([]*domain.Event, error) {
	var out eventsEnvelope
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, fallback: fallback}, &out); err != nil {
		return nil, err
	}
	if err := checkAll(c, op, out.Events); err != nil {
		return nil, err
	}
	if out.Events == nil {
		out.Events = []*domain.Event{}
	}
	return out.Events, nil
}

func (c *Client) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	var out domain.Event
	err := c.do(ctx, call{
		op: "get event", method: http.MethodGet, path: "/events/singleEvent" + p(eventID),
		fallback: "Event not found",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.check("get event", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, ev *domain.Event) (*domain.Event, error) {
	var out domain.Event
	err := c.do(ctx, call{
		op: "update event", method: http.MethodPut, path: "/events/singleEvent" + p(eventID),
		body: ev, fallback: "Failed to update event",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		// Some deployments answer with a bare acknowledgement.
		cp := *ev
		cp.ID = eventID
		return &cp, nil
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, call{
		op: "delete event", method: http.MethodDelete, path: "/events/singleEvent" + p(eventID),
		fallback: "Failed to delete event",
	}, nil)
}

func (c *Client) ListEventAttendees(ctx context.Context, eventID string) ([]string, error) {
	var out attendeesEnvelope
	err := c.do(ctx, call{
		op: "list attendees", method: http.MethodGet, path: "/events/events" + p(eventID, "attendees"),
		fallback: "Failed to fetch attendees",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.UserIDs == nil {
		out.UserIDs = []string{}
	}
	return out.UserIDs, nil
}

func (c *Client) PostComment(ctx context.Context, eventID, userID, text string) error {
	return c.do(ctx, call{
		op: "post comment", method: http.MethodPost, path: "/events" + p(eventID, "comments"),
		body: commentRequest{UserID: userID, Comment: text}, fallback: "Failed to post comment",
	}, nil)
}

func (c *Client) ListComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	var out commentsEnvelope
	err := c.do(ctx, call{
		op: "list comments", method: http.MethodGet, path: "/events" + p(eventID, "comments"),
		fallback: "Failed to fetch comments",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkAll(c, "list comments", out.Comments); err != nil {
		return nil, err
	}
	if out.Comments == nil {
		out.Comments = []*domain.Comment{}
	}
	return out.Comments, nil
}

func (c *Client) PostRating(ctx context.Context, eventID, userID string, rating int) error {
	return c.do(ctx, call{
		op: "post rating", method: http.MethodPost, path: "/events" + p(eventID, "ratings"),
		body: ratingRequest{UserID: userID, Rating: rating}, fallback: "Failed to submit rating",
	}, nil)
}

func (c *Client) GetRatingSummary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	var out domain.RatingSummary
	err := c.do(ctx, call{
		op: "get ratings", method: http.MethodGet, path: "/events" + p(eventID, "ratings"),
		fallback: "Failed to fetch ratings",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.check("get ratings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
