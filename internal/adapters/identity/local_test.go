package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confernet/internal/domain"
)

func TestLocalBackend_SignUpSignInLookup(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("secret", time.Hour, 4)

	created, err := b.SignUp(ctx, "  Ada@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.False(t, created.ExpiresAt.IsZero())

	signedIn, err := b.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, signedIn.UserID)

	restored, err := b.Lookup(ctx, signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, restored.UserID)
	assert.Equal(t, signedIn.ExpiresAt.Unix(), restored.ExpiresAt.Unix())
}

func TestLocalBackend_Errors(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("secret", time.Hour, 4)
	_, err := b.SignUp(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	tests := []struct {
		name     string
		run      func() error
		wantCode string
	}{
		{"duplicate email", func() error { _, err := b.SignUp(ctx, "ADA@example.com", "another1"); return err }, "EMAIL_EXISTS"},
		{"weak password", func() error { _, err := b.SignUp(ctx, "bob@example.com", "123"); return err }, "WEAK_PASSWORD"},
		{"bad email", func() error { _, err := b.SignUp(ctx, "not-an-email", "hunter22"); return err }, "INVALID_EMAIL"},
		{"wrong password", func() error { _, err := b.SignIn(ctx, "ada@example.com", "nope-nope"); return err }, "INVALID_LOGIN_CREDENTIALS"},
		{"unknown user", func() error { _, err := b.SignIn(ctx, "who@example.com", "hunter22"); return err }, "INVALID_LOGIN_CREDENTIALS"},
		{"garbage token", func() error { _, err := b.Lookup(ctx, "garbage"); return err }, "INVALID_ID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			var authErr *domain.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
		})
	}
}

func TestLocalBackend_Lookup_expired(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend("secret", time.Hour, 4).(*LocalBackend)
	b.tokens.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	s, err := b.SignUp(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	b.tokens.now = time.Now

	_, err = b.Lookup(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}
