package identity

import (
	"strings"

	"confernet/internal/domain"
)

const MsgInvalidLogin = domain.MsgInvalidLogin

const (
	msgExpired = "Your session has expired. Please sign in again."
	msgUnknown = "Authentication failed. Please try again."
)

var sentences = map[string]string{
	"EMAIL_EXISTS":                "An account with this email already exists.",
	"EMAIL_NOT_FOUND":             MsgInvalidLogin,
	"INVALID_PASSWORD":            MsgInvalidLogin,
	"INVALID_LOGIN_CREDENTIALS":   MsgInvalidLogin,
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"INVALID_EMAIL":               "Please enter a valid email address.",
	"MISSING_EMAIL":               "Please enter your email address.",
	"MISSING_PASSWORD":            "Please enter your password.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Please try again later.",
	"USER_DISABLED":               "This account has been disabled.",
	"USER_NOT_FOUND":              msgExpired,
	"INVALID_ID_TOKEN":            msgExpired,
	"TOKEN_EXPIRED":               msgExpired,
}

// authError translates a provider error code into a *domain.AuthError.
// Codes may carry a suffix ("WEAK_PASSWORD : Password should be ..."), only the leading word counts.
func authError(raw string) *domain.AuthError {
	code := strings.TrimSpace(raw)
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	msg, ok := sentences[code]
	if !ok {
		msg = msgUnknown
	}
	e := &domain.AuthError{Code: code, Message: msg}
	switch msg {
	case MsgInvalidLogin:
		e.Err = domain.ErrInvalidCredentials
	case msgExpired:
		e.Err = domain.ErrNoSession
	}
	return e
}
