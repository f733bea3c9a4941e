package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"confernet/internal/domain"
)

func TestAuthError(t *testing.T) {
	tests := []struct {
		raw      string
		wantCode string
		wantMsg  string
		wantIs   error
	}{
		{"INVALID_PASSWORD", "INVALID_PASSWORD", MsgInvalidLogin, domain.ErrInvalidCredentials},
		{"EMAIL_NOT_FOUND", "EMAIL_NOT_FOUND", MsgInvalidLogin, domain.ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", "INVALID_LOGIN_CREDENTIALS", MsgInvalidLogin, domain.ErrInvalidCredentials},
		{"WEAK_PASSWORD : Password should be at least 6 characters", "WEAK_PASSWORD", "Password should be at least 6 characters.", nil},
		{"EMAIL_EXISTS", "EMAIL_EXISTS", "An account with this email already exists.", nil},
		{"TOKEN_EXPIRED", "TOKEN_EXPIRED", msgExpired, domain.ErrNoSession},
		{"SOMETHING_NEW", "SOMETHING_NEW", msgUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := authError(tt.raw)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			} else {
				assert.Nil(t, err.Unwrap())
			}
		})
	}
}
