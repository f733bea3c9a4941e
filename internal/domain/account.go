package domain

import (
	"context"
	"net/mail"
	"strings"
)

// IdentitySession is the identity session of one app instance as the account flows drive it.
type IdentitySession interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut()
}

// HintAccessor is the instance-scoped view of the HintStore.
type HintAccessor interface {
	Get() SessionHints
	Save(ctx context.Context, hints SessionHints) error
	Clear(ctx context.Context) error
}

// SignupInput is the signup form.
type SignupInput struct {
	Name         string
	Email        string
	Password     string
	DOB          string
	Role         Role
	PhoneNumber  string
	Organization string
	JobTitle     string
	Country      string
	City         string
	Bio          string
}

const (
	MsgSignupNameRequired = "Full name is required."
	MsgSignupEmailInvalid = "Please enter a valid email address."
	MsgSignupPassword     = "Password should be at least 6 characters."
	MsgSignupRole         = "Please choose a role."
)

// Validate checks the fields the identity provider and the backend both need.
func (in *SignupInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, MsgSignupNameRequired)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		problems = append(problems, MsgSignupEmailInvalid)
	}
	if len(in.Password) < 6 {
		problems = append(problems, MsgSignupPassword)
	}
	if !in.Role.Valid() {
		problems = append(problems, MsgSignupRole)
	}
	return NewValidationError(problems)
}

// Registration builds the backend profile for the new identity userID.
func (in *SignupInput) Registration(userID string) *Registration {
	return &Registration{
		UserID:       userID,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		DOB:          in.DOB,
		Role:         in.Role,
		PhoneNumber:  in.PhoneNumber,
		Organization: in.Organization,
		JobTitle:     in.JobTitle,
		Country:      in.Country,
		City:         in.City,
		Bio:          in.Bio,
	}
}

// Profile is the account view: the user record and the events related to them.
type Profile struct {
	User       *UserProfile
	Joined     []*Event
	Bookmarked []*Event
	Organized  []*Event
	Speaking   []*Event
}

type AccountService interface {
	// SignUp creates the identity session, registers the profile and sends the welcome email.
	// The signup-in-progress hint stays set on success; the caller clears it when it navigates.
	SignUp(ctx context.Context, id IdentitySession, hints HintAccessor, in *SignupInput) (*Session, error)
	SignIn(ctx context.Context, id IdentitySession, hints HintAccessor, email, password string) (*Session, error)
	// FinishSignup clears the signup-in-progress hint.
	FinishSignup(ctx context.Context, hints HintAccessor) error
	SignOut(ctx context.Context, id IdentitySession, hints HintAccessor) error
	Profile(ctx context.Context, userID string) (*Profile, error)
}
