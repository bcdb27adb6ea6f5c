// Package restapi binds the SDK interfaces to the backend's REST contract.
//
// A Client owns two HTTP paths: credential exchanges (login, logout, token
// refresh) go out on a plain client, while every data call rides the
// refresh-once transport. The Client itself is the transport's Refresher,
// which keeps the refresh call off the authenticated path and outside the
// retry loop.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/metrics"
	"github.com/sogedesk/dossier-go/transport"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	logger  *slog.Logger

	// plain carries login/logout/refresh; authed carries everything else.
	plain  *http.Client
	authed *http.Client
}

// compile-time checks
var (
	_ dossier.AuthBackend = (*Client)(nil)
	_ transport.Refresher = (*Client)(nil)
)

// Option configures the Client.
type Option func(*settings)

type settings struct {
	logger           *slog.Logger
	metrics          *metrics.Metrics
	onSessionInvalid func()
	base             http.RoundTripper
}

// WithLogger sets a structured logger shared with the transport.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics sets the metrics sink shared with the transport.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithSessionInvalidHook forwards the transport's session-invalid signal.
func WithSessionInvalidHook(fn func()) Option {
	return func(s *settings) { s.onSessionInvalid = fn }
}

// WithBaseTransport sets the underlying round tripper. Tests mostly.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.base = rt }
}

// NewClient creates a REST client for cfg.BaseURL, storing and refreshing
// credentials through store.
func NewClient(cfg dossier.Config, store dossier.TokenStore, opts ...Option) *Client {
	s := &settings{
		logger:  slog.Default(),
		metrics: metrics.New(false),
		base:    http.DefaultTransport,
	}
	for _, o := range opts {
		o(s)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = dossier.DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  s.logger,
		plain:   &http.Client{Timeout: timeout, Transport: s.base},
	}

	tr := transport.New(store, c,
		transport.WithBase(s.base),
		transport.WithLogger(s.logger),
		transport.WithMetrics(s.metrics),
		transport.WithSessionInvalidHook(s.onSessionInvalid),
	)
	c.authed = tr.Client(timeout)
	return c
}

// Login implements dossier.AuthBackend.
func (c *Client) Login(ctx context.Context, username, password string) (*dossier.LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}

	var resp dossier.LoginResponse
	if err := c.doPlain(ctx, http.MethodPost, "/auth/login/", body, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" || resp.Refresh == "" || resp.User == nil {
		return nil, fmt.Errorf("dossier/restapi: incomplete login response")
	}
	return &resp, nil
}

// Logout implements dossier.AuthBackend. Best effort; the caller clears
// local state regardless.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/auth/logout/", body, nil)
}

// Refresh implements transport.Refresher.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"refresh": refreshToken}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.doPlain(ctx, http.MethodPost, "/auth/token/refresh/", body, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("dossier/restapi: empty access token in refresh response")
	}
	return resp.Access, nil
}

// do issues an authenticated JSON request and decodes the response into out
// (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.roundTrip(ctx, c.authed, method, path, body, out)
}

// doPlain issues a request outside the refresh-once transport.
func (c *Client) doPlain(ctx context.Context, method, path string, body, out any) error {
	return c.roundTrip(ctx, c.plain, method, path, body, out)
}

func (c *Client) roundTrip(ctx context.Context, client *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("dossier/restapi: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("dossier/restapi: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("dossier/restapi: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("dossier/restapi: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &dossier.APIError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
			Body:       data,
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("dossier/restapi: decode response: %w", err)
	}
	return nil
}

// decodeList unmarshals a list payload into out. The backend paginates most
// list endpoints into a {count, next, previous, results} envelope but serves
// a bare array where pagination is disabled, so both shapes are accepted.
// The returned count is -1 when the payload was a bare array.
func decodeList(raw json.RawMessage, out any) (int, error) {
	var page struct {
		Count   int             `json:"count"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err == nil && page.Results != nil {
		if err := json.Unmarshal(page.Results, out); err != nil {
			return 0, fmt.Errorf("dossier/restapi: decode list results: %w", err)
		}
		return page.Count, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return 0, fmt.Errorf("dossier/restapi: decode list: %w", err)
	}
	return -1, nil
}

// raw issues an authenticated request and returns the raw body. Used for
// binary responses (CSV export).
func (c *Client) raw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("dossier/restapi: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("dossier/restapi: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dossier/restapi: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dossier/restapi: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &dossier.APIError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
			Body:       data,
		}
	}
	return data, nil
}

// errorDetail extracts the user-displayable message from a backend error
// payload: "detail" and "error" keys first, then any flat string value.
func errorDetail(data []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	for _, v := range payload {
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case []any:
			if len(val) > 0 {
				if s, ok := val[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
