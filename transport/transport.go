// Package transport provides the HTTP round tripper used for all backend
// calls.
//
// Every outbound request is annotated with the current access token as a
// bearer credential and a generated request ID. A 401 response triggers at
// most one token refresh followed by one retry of the original request;
// concurrent 401s share a single in-flight refresh. A failed refresh clears
// the token store and signals an unrecoverable session-invalid condition.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/metrics"
)

// Refresher mints a new access token from a refresh token.
// Implementations: restapi/ (REST), fake/ (testing).
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Transport implements http.RoundTripper with bearer injection and the
// refresh-once retry policy.
type Transport struct {
	base    http.RoundTripper
	store   dossier.TokenStore
	refresh Refresher

	onSessionInvalid func()
	logger           *slog.Logger
	metrics          *metrics.Metrics

	sf singleflight.Group
}

var _ http.RoundTripper = (*Transport)(nil)

// Option configures the Transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper. Default: http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// WithSessionInvalidHook sets the callback fired when the session becomes
// unrecoverable. The session controller registers its forced logout here.
func WithSessionInvalidHook(fn func()) Option {
	return func(t *Transport) { t.onSessionInvalid = fn }
}

// New creates a Transport reading credentials from store and refreshing
// through refresher.
func New(store dossier.TokenStore, refresher Refresher, opts ...Option) *Transport {
	t := &Transport{
		base:    http.DefaultTransport,
		store:   store,
		refresh: refresher,
		logger:  slog.Default(),
		metrics: metrics.New(false),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Client returns an *http.Client using this transport.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

// RoundTrip implements http.RoundTripper. The retried flag lives on the
// stack of this call, so the once-only guarantee is per request, never
// global.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	t.authorize(req)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		Report(fmt.Errorf("dossier/transport: %s %s: %w", req.Method, req.URL.Path, err))
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		t.reportServerError(req, resp)
		return resp, nil
	}

	token, ok := t.refreshAccessToken(req.Context())
	if !ok {
		// Unrecoverable: the original 401 stands.
		return resp, nil
	}

	retry, ok := rewind(req)
	if !ok {
		t.logger.Warn("cannot replay request body, skipping retry",
			"method", req.Method, "path", req.URL.Path)
		return resp, nil
	}
	_ = resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+token)
	t.metrics.RequestRetried()

	resp, err = t.base.RoundTrip(retry)
	if err != nil {
		Report(fmt.Errorf("dossier/transport: retry %s %s: %w", retry.Method, retry.URL.Path, err))
		return nil, err
	}

	// A second 401 never triggers a second refresh.
	t.reportServerError(retry, resp)
	return resp, nil
}

// authorize sets the bearer header from the token store, if a session exists.
func (t *Transport) authorize(req *http.Request) {
	sess, err := t.store.Load()
	if err != nil || sess == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+sess.Credentials.AccessToken)
}

// refreshAccessToken performs the single-flight refresh. It returns the new
// access token, or ok=false when the session is unrecoverable.
func (t *Transport) refreshAccessToken(ctx context.Context) (string, bool) {
	sess, err := t.store.Load()
	if err != nil || sess == nil || sess.Credentials.RefreshToken == "" {
		t.invalidate("no refresh token")
		return "", false
	}

	result, err, _ := t.sf.Do("refresh", func() (interface{}, error) {
		token, err := t.refresh.Refresh(ctx, sess.Credentials.RefreshToken)
		if err != nil {
			return "", err
		}
		if err := t.store.UpdateAccessToken(token); err != nil {
			return "", err
		}
		return token, nil
	})
	if err != nil {
		t.metrics.TokenRefresh("failure")
		if clearErr := t.store.Clear(); clearErr != nil {
			t.logger.Error("clearing token store failed", "error", clearErr)
		}
		t.invalidate("refresh rejected")
		Report(fmt.Errorf("dossier/transport: token refresh: %w", err))
		return "", false
	}

	t.metrics.TokenRefresh("success")
	return result.(string), true
}

func (t *Transport) invalidate(reason string) {
	t.logger.Info("session invalidated", "reason", reason)
	t.metrics.SessionInvalidated()
	if t.onSessionInvalid != nil {
		t.onSessionInvalid()
	}
}

// reportServerError forwards terminal 4xx/5xx statuses to the global error
// reporter. 401s are excluded: they are either recovered by the retry or end
// in a session-invalid signal.
func (t *Transport) reportServerError(req *http.Request, resp *http.Response) {
	if resp.StatusCode < 400 || resp.StatusCode == http.StatusUnauthorized {
		return
	}
	Report(&dossier.APIError{
		StatusCode: resp.StatusCode,
		Detail:     fmt.Sprintf("%s %s", req.Method, req.URL.Path),
	})
}

// rewind produces a replayable copy of req. Requests without a body, or
// whose body exposes GetBody, can be retried.
func rewind(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}
