package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"confernet/internal/app"
	"confernet/internal/delivery/http/helpers"
	"confernet/internal/delivery/http/middleware"
	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

// placeholderRefresh is how often the placeholder page reloads while the session is pending.
const placeholderRefresh = time.Second

// Base holds what every page controller needs: rendering, flash notices and the post-action redirect.
type Base struct {
	Logger   *slog.Logger
	Renderer *views.Renderer
	Secure   bool
}

func NewBase(logger *slog.Logger, renderer *views.Renderer, secure bool) *Base {
	return &Base{Logger: logger, Renderer: renderer, Secure: secure}
}

// Placeholder renders the loading page shown until the session state is known.
func (b *Base) Placeholder(w http.ResponseWriter, r *http.Request) {
	b.page(w, r, http.StatusOK, "placeholder", "Loading", nil, nil, &views.Refresh{After: placeholderRefresh, URL: r.URL.RequestURI()})
}

// render writes a page, taking any pending flash notice. A redirect the gate is holding back
// makes the page re-check itself after the signup delay.
func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	b.renderNotice(w, r, status, name, title, data, nil)
}

func (b *Base) renderNotice(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, notice *domain.Notice) {
	var refresh *views.Refresh
	if d, ok := middleware.DecisionFromContext(r.Context()); ok && d.Deferred {
		if inst, ok := middleware.InstanceFromContext(r.Context()); ok {
			refresh = &views.Refresh{After: inst.Gate.SignupDelay(), URL: r.URL.RequestURI()}
		}
	}
	b.page(w, r, status, name, title, data, notice, refresh)
}

func (b *Base) page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, notice *domain.Notice, refresh *views.Refresh) {
	if flash := helpers.TakeFlash(w, r); flash != nil && notice == nil {
		notice = flash
	}
	p := &views.Page{
		Title:   title,
		Path:    r.URL.Path,
		Viewer:  viewer(r),
		Notice:  notice,
		Refresh: refresh,
		Data:    data,
	}
	if err := b.Renderer.Render(w, status, name, p); err != nil {
		b.Logger.ErrorContext(r.Context(), "render failed", "page", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// viewer paints the header from the session and the instance's hints.
func viewer(r *http.Request) views.Viewer {
	inst, ok := middleware.InstanceFromContext(r.Context())
	if !ok {
		return views.Viewer{}
	}
	snap := inst.Observer.Current()
	if !snap.Authenticated() {
		return views.Viewer{}
	}
	v := views.Viewer{UserID: snap.Session.UserID, Name: snap.Session.Email}
	if h := inst.Hints.Get(); h.UserID == v.UserID {
		if h.DisplayName != "" {
			v.Name = h.DisplayName
		}
		v.Role = h.Role
	}
	return v
}

// session returns the request's instance and its current session, if any.
func session(r *http.Request) (*app.Instance, *domain.Session) {
	inst, ok := middleware.InstanceFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	snap := inst.Observer.Current()
	if !snap.Authenticated() {
		return inst, nil
	}
	return inst, snap.Session
}

// viewerID is the user ID set by RequireSession, or the current session's on gated pages.
func viewerID(r *http.Request) string {
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		return id
	}
	if _, s := session(r); s != nil {
		return s.UserID
	}
	return ""
}

// done finishes a form action: a redirect the gate recorded wins over fallback.
func (b *Base) done(w http.ResponseWriter, r *http.Request, fallback string, notice *domain.Notice) {
	if notice != nil {
		helpers.SetFlash(w, *notice, b.Secure)
	}
	target := fallback
	if inst, ok := middleware.InstanceFromContext(r.Context()); ok {
		if t, ok := inst.Navigator.Take(); ok {
			target = t
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail reports err as an error notice on the fallback page.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, fallback string, err error) {
	b.logFailure(r, err)
	n := domain.ErrorNotice(err)
	b.done(w, r, fallback, &n)
}

func (b *Base) logFailure(r *http.Request, err error) {
	status, _ := helpers.Classify(err)
	if status >= http.StatusInternalServerError {
		b.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		return
	}
	b.Logger.InfoContext(r.Context(), "request rejected", "path", r.URL.Path, "method", r.Method, "err", err)
}

func success(msg string) *domain.Notice {
	n := domain.SuccessNotice(msg)
	return &n
}

// localPath returns p when it is a path on this site, otherwise fallback.
func localPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return fallback
	}
	return p
}
