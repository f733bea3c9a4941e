// Package views renders the HTML pages of the application from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"confernet/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// NoticeTimeout is how long a notice stays on screen.
const NoticeTimeout = 4 * time.Second

// Viewer is what the layout knows about the signed-in user, painted from the session hints.
type Viewer struct {
	UserID string
	Name   string
	Role   string
}

// SignedIn reports whether the page is rendered for a session.
func (v Viewer) SignedIn() bool { return v.UserID != "" }

// Refresh makes the page reload itself, used while the session is pending or a redirect is held.
type Refresh struct {
	After time.Duration
	URL   string
}

// Content is the http-equiv refresh value.
func (r *Refresh) Content() string {
	secs := int(r.After.Round(time.Second) / time.Second)
	secs = max(secs, 1)
	if r.URL == "" {
		return fmt.Sprint(secs)
	}
	return fmt.Sprintf("%d;url=%s", secs, r.URL)
}

// Page is the data every template receives.
type Page struct {
	Title   string
	Path    string
	Viewer  Viewer
	Notice  *domain.Notice
	Refresh *Refresh
	Data    any
}

// NoticeMillis is the auto-dismiss timeout for the page script.
func (p *Page) NoticeMillis() int64 { return NoticeTimeout.Milliseconds() }

type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout and shared partials with every page under templates/pages.
func New() (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	entries, err := fs.ReadDir(templateFS, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(entries))}
	for _, e := range entries {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, path.Join("templates/pages", e.Name())); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", e.Name(), err)
		}
		r.pages[strings.TrimSuffix(e.Name(), ".html")] = t
	}
	return r, nil
}

// Render executes page name into a buffer first so a template error never produces half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"datetime": func(t domain.EventTime) string {
		if t.IsZero() {
			return "TBA"
		}
		return t.Format("Mon 2 Jan 2006, 15:04")
	},
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2 Jan 15:04")
	},
	"mapsURL": func(location string) string {
		return "https://maps.google.com/?q=" + url.PathEscape(location)
	},
	"roleName": func(r domain.Role) string {
		s := r.String()
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"stars": func(avg float64) string {
		n := int(avg + 0.5)
		return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxRating-n)
	},
	"ratings": func() []int {
		out := make([]int, 0, domain.MaxRating)
		for i := domain.MinRating; i <= domain.MaxRating; i++ {
			out = append(out, i)
		}
		return out
	},
	"money": func(fee float64, currency string) string {
		if fee <= 0 {
			return "Free"
		}
		return fmt.Sprintf("%.2f %s", fee, currency)
	},
	"add": func(delta, n int) int { return n + delta },
	"deref": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
}
