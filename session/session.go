// Package session owns the authentication state machine.
//
// A Controller moves through Loading → {Authenticated, Anonymous}: it
// hydrates once from the token store at construction, then transitions on
// Login, Logout, and forced invalidation from the transport. Consumers must
// treat the user and authenticated flag as meaningless while the controller
// reports Loading.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/audit"
	"github.com/sogedesk/dossier-go/metrics"
)

// State is the lifecycle phase of the controller.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result is the outcome of a login attempt. Error carries a user-displayable
// message; Login never returns a Go error for credential rejection or
// network failure.
type Result struct {
	Success bool
	Error   string
}

// fallbackLoginError is shown when the backend payload carries no detail.
const fallbackLoginError = "connection error"

// Controller owns the current user, the authenticated flag, and the loading
// flag. It is safe for concurrent use.
type Controller struct {
	store   dossier.TokenStore
	backend dossier.AuthBackend
	logger  *slog.Logger
	auditor *audit.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	state State
	user  *dossier.User
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithAuditLogger sets the local audit event sink.
func WithAuditLogger(a *audit.Logger) Option {
	return func(c *Controller) { c.auditor = a }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a Controller and hydrates it from the token store. The store
// read happens synchronously; once New returns the controller is either
// Authenticated or Anonymous.
func New(store dossier.TokenStore, backend dossier.AuthBackend, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		backend: backend,
		logger:  slog.Default(),
		metrics: metrics.New(false),
		state:   StateLoading,
	}
	for _, o := range opts {
		o(c)
	}

	sess, err := store.Load()
	if err != nil || sess == nil {
		c.state = StateAnonymous
		return c
	}
	c.user = sess.User
	c.state = StateAuthenticated
	c.auditEvent(audit.Event{
		Action:   audit.ActionReconnect,
		UserID:   sess.User.ID,
		Username: sess.User.Username,
		Role:     string(sess.User.Role),
		Result:   "success",
	})
	c.logger.Debug("session hydrated from token store", "username", sess.User.Username)
	return c
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Loading reports whether hydration is still in progress.
func (c *Controller) Loading() bool { return c.State() == StateLoading }

// IsAuthenticated reports whether a user is logged in.
func (c *Controller) IsAuthenticated() bool { return c.State() == StateAuthenticated }

// CurrentUser returns the cached user, or nil when anonymous.
func (c *Controller) CurrentUser() *dossier.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Login exchanges credentials with the backend. On success the tokens and
// profile are persisted as one unit and the controller becomes
// Authenticated. On any failure the state is unchanged and the Result
// carries the backend's message.
func (c *Controller) Login(ctx context.Context, username, password string) Result {
	resp, err := c.backend.Login(ctx, username, password)
	if err != nil {
		c.metrics.LoginAttempt("failure")
		c.auditEvent(audit.Event{
			Action:   audit.ActionLoginFailed,
			Username: username,
			Result:   "failure",
			Error:    err.Error(),
		})
		c.logger.Info("login rejected", "username", username, "error", err)
		return Result{Success: false, Error: loginErrorMessage(err)}
	}

	creds := dossier.Credentials{AccessToken: resp.Access, RefreshToken: resp.Refresh}
	if err := c.store.Save(creds, resp.User); err != nil {
		c.metrics.LoginAttempt("failure")
		c.logger.Error("persisting session failed", "error", err)
		return Result{Success: false, Error: fallbackLoginError}
	}

	c.mu.Lock()
	c.user = resp.User
	c.state = StateAuthenticated
	c.mu.Unlock()

	c.metrics.LoginAttempt("success")
	c.auditEvent(audit.Event{
		Action:   audit.ActionLogin,
		UserID:   resp.User.ID,
		Username: resp.User.Username,
		Role:     string(resp.User.Role),
		Result:   "success",
	})
	c.logger.Info("login succeeded", "username", resp.User.Username, "role", resp.User.Role)
	return Result{Success: true}
}

// loginErrorMessage extracts the user-displayable message from a backend
// error payload. Network failures and credential rejections look the same to
// the caller.
func loginErrorMessage(err error) string {
	var apiErr *dossier.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallbackLoginError
}

// Logout notifies the backend to blacklist the refresh token, then clears
// the local session unconditionally. A failed backend call is logged and
// does not block the local logout.
func (c *Controller) Logout(ctx context.Context) {
	sess, err := c.store.Load()
	if err == nil && sess != nil && sess.Credentials.RefreshToken != "" {
		if err := c.backend.Logout(ctx, sess.Credentials.RefreshToken); err != nil {
			c.logger.Warn("backend logout failed", "error", err)
		}
	}

	c.clearLocal()
	c.metrics.Logout()
	c.auditEvent(audit.Event{Action: audit.ActionLogout, Result: "success"})
}

// ForceLogout clears the local session without contacting the backend.
// Wired to the transport's session-invalid hook.
func (c *Controller) ForceLogout(reason string) {
	c.logger.Info("forcing logout", "reason", reason)
	c.clearLocal()
	c.auditEvent(audit.Event{
		Action:  audit.ActionSessionInvalid,
		Result:  "failure",
		Details: reason,
	})
}

func (c *Controller) clearLocal() {
	if err := c.store.Clear(); err != nil {
		c.logger.Error("clearing token store failed", "error", err)
	}
	c.mu.Lock()
	c.user = nil
	c.state = StateAnonymous
	c.mu.Unlock()
}

// UpdateProfile replaces the cached user and persists it, without touching
// tokens or authentication state.
func (c *Controller) UpdateProfile(user *dossier.User) error {
	if user == nil {
		return fmt.Errorf("dossier/session: user cannot be nil")
	}

	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return dossier.ErrNotAuthenticated
	}
	c.mu.Unlock()

	// Persist first so the cached user never diverges from the store.
	sess, err := c.store.Load()
	if err != nil || sess == nil {
		return dossier.ErrNotAuthenticated
	}
	if err := c.store.Save(sess.Credentials, user); err != nil {
		return err
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	return nil
}

// HasPermission reports whether the current user's role ranks at or above
// the required role.
func (c *Controller) HasPermission(required dossier.Role) bool {
	ok := dossier.HasPermission(c.CurrentUser(), required)
	c.recordCheck("role", string(required), ok)
	return ok
}

// Can reports whether the current user's role is whitelisted for the action.
func (c *Controller) Can(action dossier.Action) bool {
	ok := dossier.Can(c.CurrentUser(), action)
	c.recordCheck("action", string(action), ok)
	return ok
}

func (c *Controller) recordCheck(kind, subject string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "denied"
		user := c.CurrentUser()
		ev := audit.Event{
			Action:   audit.ActionPermissionDenied,
			Resource: subject,
			Result:   "denied",
		}
		if user != nil {
			ev.UserID = user.ID
			ev.Username = user.Username
			ev.Role = string(user.Role)
		}
		c.auditEvent(ev)
	}
	c.metrics.PermissionCheck(kind, result)
}

func (c *Controller) auditEvent(ev audit.Event) {
	if c.auditor != nil {
		c.auditor.Log(ev)
	}
}
