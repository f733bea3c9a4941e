package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"confernet/internal/domain"
)

// DefaultToolkitURL is the public Identity Toolkit endpoint.
const DefaultToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// ToolkitBackend talks to an Identity-Toolkit-compatible REST provider.
type ToolkitBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

// NewToolkitBackend returns a backend for the provider at baseURL (DefaultToolkitURL when empty).
func NewToolkitBackend(baseURL, apiKey string, httpClient *http.Client) domain.IdentityBackend {
	if baseURL == "" {
		baseURL = DefaultToolkitURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ToolkitBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		now:     time.Now,
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID  string `json:"localId"`
		Email    string `json:"email"`
		Disabled bool   `json:"disabled"`
	} `json:"users"`
}

type toolkitErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *ToolkitBackend) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return b.credentials(ctx, "accounts:signUp", email, password)
}

func (b *ToolkitBackend) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return b.credentials(ctx, "accounts:signInWithPassword", email, password)
}

func (b *ToolkitBackend) credentials(ctx context.Context, method, email, password string) (*domain.Session, error) {
	var out tokenResponse
	req := credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := b.post(ctx, method, req, &out); err != nil {
		return nil, err
	}
	if out.LocalID == "" || out.IDToken == "" {
		return nil, fmt.Errorf("%s: %w: missing localId or idToken", method, domain.ErrInvalidResponse)
	}
	s := &domain.Session{UserID: out.LocalID, Email: out.Email, Token: out.IDToken}
	if secs, err := strconv.Atoi(out.ExpiresIn); err == nil && secs > 0 {
		s.ExpiresAt = b.now().Add(time.Duration(secs) * time.Second)
	} else {
		s.ExpiresAt = expiryOf(out.IDToken)
	}
	return s, nil
}

func (b *ToolkitBackend) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	var out lookupResponse
	if err := b.post(ctx, "accounts:lookup", lookupRequest{IDToken: token}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, authError("USER_NOT_FOUND")
	}
	u := out.Users[0]
	if u.Disabled {
		return nil, authError("USER_DISABLED")
	}
	exp := expiryOf(token)
	if !exp.IsZero() && !b.now().Before(exp) {
		return nil, authError("TOKEN_EXPIRED")
	}
	return &domain.Session{UserID: u.LocalID, Email: u.Email, Token: token, ExpiresAt: exp}, nil
}

func (b *ToolkitBackend) post(ctx context.Context, method string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", method, err)
	}
	endpoint := b.baseURL + "/" + method + "?key=" + url.QueryEscape(b.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb toolkitErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			return authError(eb.Error.Message)
		}
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", method, domain.ErrInvalidResponse, err)
	}
	return nil
}
