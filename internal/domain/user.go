package domain

import (
	"context"
	"strings"
)

// Role is the application role of a user. The backend encodes it as a number.
type Role int

const (
	RoleOrganizer Role = 1
	RoleSpeaker   Role = 2
	RoleAttendee  Role = 3
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleOrganizer, RoleSpeaker, RoleAttendee}

func (r Role) String() string {
	switch r {
	case RoleOrganizer:
		return "organizer"
	case RoleSpeaker:
		return "speaker"
	case RoleAttendee:
		return "attendee"
	}
	return "unknown"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleSpeaker || r == RoleAttendee
}

// ParseRole maps a role name to a Role. Anything unrecognised becomes RoleAttendee.
func ParseRole(s string) Role {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "organizer", "1":
		return RoleOrganizer
	case "speaker", "2":
		return RoleSpeaker
	}
	return RoleAttendee
}

// UserProfile is the backend's user record. Read-only from this application.
type UserProfile struct {
	UserID         string `json:"userId" validate:"required"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DOB            string `json:"dob,omitempty"`
	Role           Role   `json:"role"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Organization   string `json:"organization,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Country        string `json:"country,omitempty"`
	City           string `json:"city,omitempty"`
	Bio            string `json:"bio,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// DisplayName returns the name, falling back to the email.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unnamed"
}

// Registration is the profile payload sent right after a new identity session is created.
type Registration struct {
	UserID         string  `json:"userId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DOB            string  `json:"dob"`
	Role           Role    `json:"role"`
	PhoneNumber    string  `json:"phoneNumber"`
	Organization   string  `json:"organization"`
	JobTitle       string  `json:"jobTitle"`
	Country        string  `json:"country"`
	City           string  `json:"city"`
	Bio            string  `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}

// UserAPI covers the backend's user directory, bookmarks and RSVPs.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]*UserProfile, error)
	GetUser(ctx context.Context, userID string) (*UserProfile, error)
	ListUsersByIDs(ctx context.Context, userIDs []string) ([]*UserProfile, error)
	ListUsersByRole(ctx context.Context, role Role) ([]*UserProfile, error)

	BookmarkEvent(ctx context.Context, userID, eventID string) error
	RemoveEventBookmark(ctx context.Context, userID, eventID string) error
	ListBookmarkedEvents(ctx context.Context, userID string) ([]*Event, error)

	BookmarkSession(ctx context.Context, userID, sessionID string) error
	RemoveSessionBookmark(ctx context.Context, userID, sessionID string) error
	ListBookmarkedSessions(ctx context.Context, userID string) ([]string, error)

	JoinEvent(ctx context.Context, userID, eventID string) error
	LeaveEvent(ctx context.Context, userID, eventID string) error
	ListRegisteredEvents(ctx context.Context, userID string) ([]*Event, error)
}

// RegistrationAPI creates the backend profile for a new identity.
type RegistrationAPI interface {
	RegisterUser(ctx context.Context, reg *Registration) error
}
