package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"confernet/internal/domain"
)

type usersEnvelope struct {
	Users []*domain.UserProfile `json:"users"`
}

type sessionsEnvelope struct {
	Sessions []string `json:"sessions"`
}

type userIDsRequest struct {
	UserIDs []string `json:"userIds"`
}

// Precondition failures raised before any request is sent.
var (
	ErrEmptyUserIDs = errors.New("userIds must be a non-empty array")
	ErrInvalidRole  = errors.New("roleId must be a valid role")
)

func (c *Client) ListUsers(ctx context.Context) ([]*domain.UserProfile, error) {
	var out []*domain.UserProfile
	err := c.do(ctx, call{op: "list users", method: http.MethodGet, path: "/users", fallback: "Failed to fetch users"}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkAll(c, "list users", out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.UserProfile{}
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var out domain.UserProfile
	err := c.do(ctx, call{op: "get user", method: http.MethodGet, path: "/users" + p(userID), fallback: "User not found"}, &out)
	if err != nil {
		return nil, err
	}
	if out.UserID == "" {
		out.UserID = userID
	}
	if err := c.check("get user", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsersByIDs(ctx context.Context, userIDs []string) ([]*domain.UserProfile, error) {
	if len(userIDs) == 0 {
		return nil, ErrEmptyUserIDs
	}
	var out usersEnvelope
	err := c.do(ctx, call{
		op: "list users by ids", method: http.MethodPost, path: "/users/multiple-users/by-ids",
		body: userIDsRequest{UserIDs: userIDs}, fallback: "Failed to fetch users by IDs",
	}, &out)
	if err != nil {
		return nil, err
	}
	return c.users("list users by ids", out.Users)
}

func (c *Client) ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.UserProfile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	var out usersEnvelope
	err := c.do(ctx, call{
		op: "list users by role", method: http.MethodGet, path: "/users-by-roleid/role" + p(strconv.Itoa(int(role))),
		fallback: "Failed to fetch users by role",
	}, &out)
	if err != nil {
		return nil, err
	}
	return c.users("list users by role", out.Users)
}

func (c *Client) users(op string, users []*domain.UserProfile) ([]*domain.UserProfile, error) {
	if err := checkAll(c, op, users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.UserProfile{}
	}
	return users, nil
}

func (c *Client) BookmarkEvent(ctx context.Context, userID, eventID string) error {
	return c.do(ctx, call{
		op: "bookmark event", method: http.MethodPost, path: "/users" + p(userID, "bookmark-event", eventID),
		fallback: "Failed to bookmark event",
	}, nil)
}

func (c *Client) RemoveEventBookmark(ctx context.Context, userID, eventID string) error {
	return c.do(ctx, call{
		op: "remove event bookmark", method: http.MethodDelete, path: "/users" + p(userID, "bookmark-event", eventID),
		fallback: "Failed to remove event bookmark",
	}, nil)
}

func (c *Client) ListBookmarkedEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	return c.listEvents(ctx, "list bookmarked events", "/users"+p(userID, "bookmarked-events"), "Failed to get bookmarked events")
}

func (c *Client) BookmarkSession(ctx context.Context, userID, sessionID string) error {
	return c.do(ctx, call{
		op: "bookmark session", method: http.MethodPost, path: "/users" + p(userID, "bookmark", sessionID),
		fallback: "Failed to bookmark session",
	}, nil)
}

func (c *Client) RemoveSessionBookmark(ctx context.Context, userID, sessionID string) error {
	return c.do(ctx, call{
		op: "remove session bookmark", method: http.MethodDelete, path: "/users" + p(userID, "bookmark", sessionID),
		fallback: "Failed to remove bookmark",
	}, nil)
}

func (c *Client) ListBookmarkedSessions(ctx context.Context, userID string) ([]string, error) {
	var out sessionsEnvelope
	err := c.do(ctx, call{
		op: "list bookmarked sessions", method: http.MethodGet, path: "/users" + p(userID, "bookmarks"),
		fallback: "Failed to get bookmarks",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Sessions == nil {
		out.Sessions = []string{}
	}
	return out.Sessions, nil
}

func (c *Client) JoinEvent(ctx context.Context, userID, eventID string) error {
	return c.do(ctx, call{
		op: "join event", method: http.MethodPost, path: "/users" + p(userID, "join-event", eventID),
		fallback: "Failed to join event",
	}, nil)
}

func (c *Client) LeaveEvent(ctx context.Context, userID, eventID string) error {
	return c.do(ctx, call{
		op: "leave event", method: http.MethodDelete, path: "/users" + p(userID, "leave-event", eventID),
		fallback: "Failed to leave event",
	}, nil)
}

func (c *Client) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	return c.listEvents(ctx, "list registered events", "/users"+p(userID, "registered-events"), "Failed to fetch registered events")
}

func (c *Client) RegisterUser(ctx context.Context, reg *domain.Registration) error {
	return c.do(ctx, call{
		op: "register user", method: http.MethodPost, path: "/register",
		body: reg, fallback: "Failed to register user",
	}, nil)
}
