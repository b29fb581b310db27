// Package authclient talks to a remote authentication service that exchanges
// a username and password for a user record and a token.
package authclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/session"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultRejectMessage is used when a refusal carries no message.
const DefaultRejectMessage = "Invalid credentials"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

var (
	ErrNoBaseURL        = errors.New("authclient: base URL is required")
	ErrMalformedReply   = errors.New("authclient: malformed login response")
	ErrMissingToken     = errors.New("authclient: login response has no token")
	ErrEmptyCredentials = errors.New("authclient: username and password are required")
)

// RejectedError is returned when the service answers with a non-2xx status.
// It matches goGate.ErrInvalidCredentials under errors.Is.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("authclient: login rejected (%d): %s", e.Status, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == goGate.ErrInvalidCredentials
}

// Client implements goGate.Authenticator against POST {BaseURL}/login.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ goGate.Authenticator = (*Client)(nil)

// Authenticate posts {"username","password"} and returns the user and token
// from either a {"user":{...},"token"} or a flat {"username","role","token"}
// reply.
func (c *Client) Authenticate(ctx context.Context, username, password string) (goGate.UserIdentity, string, error) {
	if c == nil || c.BaseURL == "" {
		return goGate.UserIdentity{}, "", ErrNoBaseURL
	}
	if username == "" || password == "" {
		return goGate.UserIdentity{}, "", ErrEmptyCredentials
	}

	body, err := sjson.SetBytes([]byte(`{}`), "username", username)
	if err != nil {
		return goGate.UserIdentity{}, "", err
	}
	if body, err = sjson.SetBytes(body, "password", password); err != nil {
		return goGate.UserIdentity{}, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return goGate.UserIdentity{}, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return goGate.UserIdentity{}, "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return goGate.UserIdentity{}, "", fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := DefaultRejectMessage
		if gjson.ValidBytes(data) {
			if m := gjson.GetBytes(data, "message"); m.Type == gjson.String && m.Str != "" {
				msg = m.Str
			}
		}
		return goGate.UserIdentity{}, "", &RejectedError{Status: resp.StatusCode, Message: msg}
	}

	return ParseReply(data)
}

// ParseReply extracts the identity and token from a successful login body.
func ParseReply(data []byte) (goGate.UserIdentity, string, error) {
	if !gjson.ValidBytes(data) {
		return goGate.UserIdentity{}, "", ErrMalformedReply
	}
	root := gjson.ParseBytes(data)

	token := root.Get("token")
	if token.Type != gjson.String || token.Str == "" {
		return goGate.UserIdentity{}, "", ErrMissingToken
	}

	record := []byte(root.Raw)
	if u := root.Get("user"); u.IsObject() {
		record = []byte(u.Raw)
	}
	user, err := session.DecodeUser(record)
	if err != nil {
		return goGate.UserIdentity{}, "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return user, token.Str, nil
}
