package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"confernet/internal/app"
)

// Cookie names of the browser's app instance and its identity token.
const (
	ClientCookie  = "confernet_client"
	SessionCookie = "confernet_session"
)

const clientCookieMaxAge = 365 * 24 * 60 * 60

// InstanceProvider resolves the app instance of a browser.
type InstanceProvider interface {
	Get(ctx context.Context, clientID, token string) *app.Instance
}

// AppInstance resolves the browser's app instance from the client cookie, issuing a new id when
// the cookie is missing or malformed, and stores the instance in the request context.
func AppInstance(instances InstanceProvider, secure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				clientID = id.String()
			}
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    clientID,
				Path:     "/",
				MaxAge:   clientCookieMaxAge,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		token := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
		inst := instances.Get(r.Context(), clientID, token)
		next.ServeHTTP(w, r.WithContext(SetInstance(r.Context(), inst)))
	})
}
