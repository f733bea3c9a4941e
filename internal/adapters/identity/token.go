package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// tokenIssuer signs and verifies HS256 ID tokens for LocalBackend.
type tokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func newTokenIssuer(secret string) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token for the user and the instant it expires.
func (i *tokenIssuer) Issue(userID, email string, expiry time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(expiry)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt.Truncate(time.Second), nil
}

// Verify checks the signature and expiry of tokenString.
func (i *tokenIssuer) Verify(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// expiryOf reads the exp claim of a token without verifying it. Used for provider-issued tokens,
// which the provider itself has already verified.
func expiryOf(tokenString string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
