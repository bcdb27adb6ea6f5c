// Package ginmw provides Gin HTTP middleware for hosts that render the
// admin portal behind the session layer.
//
// The middleware evaluates the same route guard the UI uses: loading yields
// a retry hint, a broken session redirects to the login page, an
// insufficient role or capability redirects to the dashboard.
package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/guard"
	"github.com/sogedesk/dossier-go/idle"
	"github.com/sogedesk/dossier-go/metrics"
	"github.com/sogedesk/dossier-go/session"
)

// Context key for the authenticated user stored in gin.Context.
const KeyUser = "dossier_user"

// Paths the redirect decisions resolve to.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// GuardOption configures the Guard middleware.
type GuardOption func(*guardConfig)

type guardConfig struct {
	metrics *metrics.Metrics
}

// WithMetrics records each guard decision.
func WithMetrics(m *metrics.Metrics) GuardOption {
	return func(cfg *guardConfig) { cfg.metrics = m }
}

// Guard returns Gin middleware that gates a route on the session state and
// an optional role/capability requirement. Activity on the route counts as
// user activity for the inactivity monitor.
func Guard(ctrl *session.Controller, monitor *idle.Monitor, store dossier.TokenStore, req guard.Requirement, opts ...GuardOption) gin.HandlerFunc {
	cfg := &guardConfig{metrics: metrics.New(false)}
	for _, o := range opts {
		o(cfg)
	}

	return func(c *gin.Context) {
		snap := guard.Snap(ctrl, monitor, store)
		decision := guard.Evaluate(snap, req)
		cfg.metrics.GuardDecision(decision.String())

		switch decision {
		case guard.ShowLoading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "session loading"})
			return
		case guard.RedirectLogin:
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		case guard.RedirectDashboard:
			c.Redirect(http.StatusFound, DashboardPath)
			c.Abort()
			return
		}

		if monitor != nil {
			monitor.ResetTimer()
		}
		c.Set(KeyUser, snap.User)
		c.Next()
	}
}

// RequireAction is shorthand for a Guard with only a capability requirement.
func RequireAction(ctrl *session.Controller, monitor *idle.Monitor, store dossier.TokenStore, action dossier.Action, opts ...GuardOption) gin.HandlerFunc {
	return Guard(ctrl, monitor, store, guard.Requirement{Action: action}, opts...)
}

// RequireRole is shorthand for a Guard with only a minimum-role requirement.
func RequireRole(ctrl *session.Controller, monitor *idle.Monitor, store dossier.TokenStore, role dossier.Role, opts ...GuardOption) gin.HandlerFunc {
	return Guard(ctrl, monitor, store, guard.Requirement{Role: role}, opts...)
}

// CurrentUser returns the authenticated user stored by Guard, or nil.
func CurrentUser(c *gin.Context) *dossier.User {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	user, ok := v.(*dossier.User)
	if !ok {
		return nil
	}
	return user
}
