package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	h "confernet/internal/delivery/http/helpers"
	"confernet/internal/gate"
)

// RequireSession returns a wrapper that admits requests whose app instance holds a session and sets
// the user ID in the request context. API requests without one get a 401 envelope; form posts
// are sent to the entry path.
func RequireSession(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			inst, ok := InstanceFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "no app instance on request", "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "app instance unavailable")
				return
			}
			snap := inst.Observer.Current()
			if !snap.Authenticated() {
				if wantsJSON(r) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "no active session")
					return
				}
				http.Redirect(w, r, gate.DefaultEntryPath, http.StatusSeeOther)
				return
			}
			r = r.WithContext(SetUserID(r.Context(), snap.Session.UserID))
			next(w, r)
		}
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.HasPrefix(r.URL.Path, "/ws/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
