package helpers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"confernet/internal/domain"
)

// FlashCookie carries one notice across a post/redirect/get cycle.
const FlashCookie = "confernet_flash"

// SetFlash stores n for the next page the browser loads.
func SetFlash(w http.ResponseWriter, n domain.Notice, secure bool) {
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash returns the pending notice, if any, and expires the cookie.
func TakeFlash(w http.ResponseWriter, r *http.Request) *domain.Notice {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: FlashCookie, Value: "", Path: "/", MaxAge: -1})
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var n domain.Notice
	if err := json.Unmarshal(b, &n); err != nil || n.Message == "" {
		return nil
	}
	return &n
}
