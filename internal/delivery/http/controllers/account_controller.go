package controllers

import (
	"net/http"
	"strings"
	"time"

	"confernet/internal/delivery/http/helpers"
	"confernet/internal/delivery/http/middleware"
	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
	"confernet/internal/gate"
)

// MsgProfileUnavailable is shown when the account view cannot load.
const MsgProfileUnavailable = "Could not load user data."

type AccountController struct {
	*Base
	Service domain.AccountService
}

func NewAccountController(base *Base, svc domain.AccountService) *AccountController {
	return &AccountController{Base: base, Service: svc}
}

// Landing renders the public entry page.
func (c *AccountController) Landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	c.render(w, r, http.StatusOK, "landing", "", nil)
}

func (c *AccountController) LoginPage(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "login", "Log in", views.LoginData{})
}

// Login signs the instance in. A failure publishes no session, so the gate stays put and the form
// is shown again with the provider's sentence.
func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	inst, ok := middleware.InstanceFromContext(r.Context())
	if !ok {
		http.Error(w, "app instance unavailable", http.StatusInternalServerError)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	sess, err := c.Service.SignIn(r.Context(), inst.Identity, inst.Hints, email, r.PostFormValue("password"))
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(err)
		c.renderNotice(w, r, http.StatusUnauthorized, "login", "Log in", views.LoginData{Email: email}, &n)
		return
	}
	c.setSessionCookie(w, sess)
	c.done(w, r, gate.DefaultHomePath, nil)
}

func (c *AccountController) SignupPage(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "signup", "Sign up", views.SignupData{
		Input: domain.SignupInput{Role: domain.RoleAttendee},
		Roles: domain.Roles,
	})
}

// Signup registers the account. The gate holds its redirect home while the profile is being
// created; once the flag is cleared here the held redirect is released.
func (c *AccountController) Signup(w http.ResponseWriter, r *http.Request) {
	inst, ok := middleware.InstanceFromContext(r.Context())
	if !ok {
		http.Error(w, "app instance unavailable", http.StatusInternalServerError)
		return
	}
	in := domain.SignupInput{
		Name:         r.PostFormValue("name"),
		Email:        r.PostFormValue("email"),
		Password:     r.PostFormValue("password"),
		DOB:          r.PostFormValue("dob"),
		Role:         domain.ParseRole(r.PostFormValue("role")),
		PhoneNumber:  r.PostFormValue("phoneNumber"),
		Organization: r.PostFormValue("organization"),
		JobTitle:     r.PostFormValue("jobTitle"),
		Country:      r.PostFormValue("country"),
		City:         r.PostFormValue("city"),
		Bio:          r.PostFormValue("bio"),
	}
	sess, err := c.Service.SignUp(r.Context(), inst.Identity, inst.Hints, &in)
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(err)
		in.Password = ""
		status, _ := helpers.Classify(err)
		c.renderNotice(w, r, status, "signup", "Sign up", views.SignupData{Input: in, Roles: domain.Roles}, &n)
		return
	}
	c.setSessionCookie(w, sess)
	if err := c.Service.FinishSignup(r.Context(), inst.Hints); err != nil {
		c.Logger.WarnContext(r.Context(), "failed to clear signup flag", "err", err)
	}
	inst.Gate.Recheck()
	c.done(w, r, gate.DefaultHomePath, success("Welcome to ConferNet!"))
}

func (c *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	inst, ok := middleware.InstanceFromContext(r.Context())
	if !ok {
		http.Error(w, "app instance unavailable", http.StatusInternalServerError)
		return
	}
	if err := c.Service.SignOut(r.Context(), inst.Identity, inst.Hints); err != nil {
		c.Logger.WarnContext(r.Context(), "sign-out cleanup failed", "err", err)
	}
	http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: c.Secure})
	c.done(w, r, gate.DefaultEntryPath, nil)
}

// Account renders the profile with its event tabs. The fourth tab depends on the role.
func (c *AccountController) Account(w http.ResponseWriter, r *http.Request) {
	p, err := c.Service.Profile(r.Context(), viewerID(r))
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(errString(MsgProfileUnavailable))
		c.renderNotice(w, r, http.StatusOK, "account", "Account", views.AccountData{User: &domain.UserProfile{}}, &n)
		return
	}
	tabs := []views.AccountTab{
		{Key: "joined", Label: "Joined", Events: p.Joined},
		{Key: "bookmarked", Label: "Bookmarked", Events: p.Bookmarked},
	}
	switch p.User.Role {
	case domain.RoleOrganizer:
		tabs = append(tabs, views.AccountTab{Key: "organized", Label: "Organized", Events: p.Organized})
	case domain.RoleSpeaker:
		tabs = append(tabs, views.AccountTab{Key: "speaking", Label: "Speaking", Events: p.Speaking})
	}
	active := tabs[0].Key
	for _, t := range tabs {
		if t.Key == r.URL.Query().Get("tab") {
			active = t.Key
		}
	}
	c.render(w, r, http.StatusOK, "account", "Account", views.AccountData{User: p.User, Tabs: tabs, Active: active})
}

func (c *AccountController) setSessionCookie(w http.ResponseWriter, s *domain.Session) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		cookie.Expires = s.ExpiresAt
		cookie.MaxAge = int(time.Until(s.ExpiresAt).Seconds())
	}
	http.SetCookie(w, cookie)
}

// errString is a fixed user-facing error text.
type errString string

func (e errString) Error() string { return string(e) }
