package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/backoffice/core/logger"
)

const (
	// DefaultTimeout bounds every auth call when no custom http.Client is given.
	DefaultTimeout = 15 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 1 << 20

	pathLogin   = "/api/auth/login"
	pathRefresh = "/api/auth/refresh"
	pathLogout  = "/api/auth/logout"
)

// TokenPair is the credential pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Client calls the auth endpoints of one backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "login", pathLogin, loginRequest{Username: username, Password: password}, &pair)
	if err != nil {
		return TokenPair{}, err
	}
	if pair.AccessToken == "" {
		return TokenPair{}, fmt.Errorf("%w: missing access token", ErrMalformedResponse)
	}
	return pair, nil
}

// Refresh mints a new token pair from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	if err := c.post(ctx, "refresh", pathRefresh, refreshRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return TokenPair{}, err
	}
	if pair.AccessToken == "" {
		return TokenPair{}, fmt.Errorf("%w: missing access token", ErrMalformedResponse)
	}
	return pair, nil
}

// Logout asks the backend to invalidate refreshToken. The response body is ignored.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, "logout", pathLogout, refreshRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("authapi %s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("authapi %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "auth call failed",
			logger.Action(op),
			logger.Elapsed(start),
			logger.Error(err),
		)
		return &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &APIError{Op: op, Status: resp.StatusCode, Err: err}
	}

	c.log.DebugContext(ctx, "auth call",
		logger.Action(op),
		logger.StatusCode(resp.StatusCode),
		logger.Elapsed(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
