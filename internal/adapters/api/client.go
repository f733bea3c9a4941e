// Package api is the client for the ConferNet backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator"

	"confernet/internal/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Error is a non-2xx backend response. Message is the server's own error text when it sent one,
// otherwise a fixed per-endpoint default.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap maps 404 responses onto domain.ErrNotFound.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client issues one HTTP round trip per call. It does not retry or cache.
type Client struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
}

// NewClient returns a Client for the API rooted at baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   httpClient,
		validate: validator.New(),
	}
}

var _ domain.Backend = (*Client)(nil)

// call describes one endpoint invocation.
type call struct {
	op          string
	method      string
	path        string
	body        any
	rawBody     io.Reader
	contentType string
	fallback    string
}

// p joins escaped path segments onto a leading slash.
func p(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, in call, out any) error {
	body := in.rawBody
	contentType := in.contentType
	if in.body != nil {
		buf, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", in.op, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	req, err := http.NewRequestWithContext(ctx, in.method, c.baseURL+in.path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", in.op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", in.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", in.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := in.fallback
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		return &Error{Op: in.op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", in.op, domain.ErrInvalidResponse, err)
	}
	return nil
}

// check validates one decoded record against its struct tags.
func (c *Client) check(op string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidResponse, err)
	}
	return nil
}

// checkAll validates every element of a decoded list; nil elements are rejected.
func checkAll[T any](c *Client, op string, items []*T) error {
	for i, item := range items {
		if item == nil {
			return fmt.Errorf("%s: %w: null element at index %d", op, domain.ErrInvalidResponse, i)
		}
		if err := c.check(op, item); err != nil {
			return err
		}
	}
	return nil
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
