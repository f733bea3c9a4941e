package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := newTokenIssuer("test-secret")

	token, expiresAt, err := issuer.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, expiresAt.Unix(), expiryOf(token).Unix())
}

func TestTokenIssuer_Verify_rejects(t *testing.T) {
	issuer := newTokenIssuer("test-secret")
	other := newTokenIssuer("other-secret")

	token, _, err := other.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := issuer.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Verify(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestExpiryOf_garbage(t *testing.T) {
	assert.True(t, expiryOf("not-a-jwt").IsZero())
}
