package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"confernet/internal/domain"
)

const minPasswordLength = 6

type account struct {
	userID string
	email  string
	salt   string
	hash   string
}

// LocalBackend is an in-process identity provider for development and tests.
// Accounts live in memory and are lost on restart.
type LocalBackend struct {
	mu       sync.RWMutex
	accounts map[string]*account

	hasher *passwordHasher
	tokens *tokenIssuer
	expiry time.Duration
}

// NewLocalBackend returns a LocalBackend signing tokens with secret that expire after expiry.
func NewLocalBackend(secret string, expiry time.Duration, bcryptCost int) domain.IdentityBackend {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &LocalBackend{
		accounts: make(map[string]*account),
		hasher:   newPasswordHasher(bcryptCost),
		tokens:   newTokenIssuer(secret),
		expiry:   expiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (b *LocalBackend) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, authError("MISSING_EMAIL")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, authError("INVALID_EMAIL")
	}
	if len(password) < minPasswordLength {
		return nil, authError("WEAK_PASSWORD")
	}

	salt, err := b.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := b.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if _, exists := b.accounts[email]; exists {
		b.mu.Unlock()
		return nil, authError("EMAIL_EXISTS")
	}
	acc := &account{userID: uuid.NewString(), email: email, salt: salt, hash: hash}
	b.accounts[email] = acc
	b.mu.Unlock()

	return b.issue(acc)
}

func (b *LocalBackend) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if password == "" {
		return nil, authError("MISSING_PASSWORD")
	}
	b.mu.RLock()
	acc, ok := b.accounts[normalizeEmail(email)]
	b.mu.RUnlock()
	if !ok {
		return nil, authError("INVALID_LOGIN_CREDENTIALS")
	}
	if err := b.hasher.Compare(acc.hash, acc.salt, password); err != nil {
		return nil, authError("INVALID_LOGIN_CREDENTIALS")
	}
	return b.issue(acc)
}

func (b *LocalBackend) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := b.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authError("TOKEN_EXPIRED")
		}
		return nil, authError("INVALID_ID_TOKEN")
	}
	b.mu.RLock()
	acc, ok := b.accounts[claims.Email]
	b.mu.RUnlock()
	if !ok || acc.userID != claims.Subject {
		return nil, authError("USER_NOT_FOUND")
	}
	s := &domain.Session{UserID: acc.userID, Email: acc.email, Token: token}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

func (b *LocalBackend) issue(acc *account) (*domain.Session, error) {
	token, expiresAt, err := b.tokens.Issue(acc.userID, acc.email, b.expiry)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.Session{UserID: acc.userID, Email: acc.email, Token: token, ExpiresAt: expiresAt}, nil
}
