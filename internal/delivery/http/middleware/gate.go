package middleware

import (
	"context"
	"net/http"
	"strings"

	"confernet/internal/gate"
)

// navigationExclusions are data endpoints the gate skips. RequireSession guards them instead.
var navigationExclusions = []string{"/api/", "/ws/", "/swagger/", "/static/"}

// Gate runs every GET or HEAD page navigation through the instance's route gate. A pending session
// renders placeholder, a redirect decision is carried out with 303 See Other, and a render decision
// is stored in the context for the view.
func Gate(placeholder http.Handler, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		for _, prefix := range navigationExclusions {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		inst, ok := InstanceFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		// A fresh navigation supersedes any redirect recorded since the last response.
		inst.Navigator.Reset()
		d := inst.Gate.Navigate(r.URL.Path)
		switch d.Outcome {
		case gate.OutcomePlaceholder:
			w.Header().Set("Cache-Control", "no-store")
			placeholder.ServeHTTP(w, r)
		case gate.OutcomeRedirect:
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), decisionKey, d)))
		}
	})
}
