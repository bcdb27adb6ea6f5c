// Package guard decides, per protected navigation, whether to render the
// requested view, show the loading state, or redirect.
//
// The decision is a pure function over a snapshot of session and inactivity
// state, re-evaluated on every navigation. Precedence is fixed: loading,
// then authentication/inactivity/token validity, then the role check, then
// the action check.
package guard

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/idle"
	"github.com/sogedesk/dossier-go/session"
)

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	ShowLoading Decision = iota
	RedirectLogin
	RedirectDashboard
	Render
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show_loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	case Render:
		return "render"
	}
	return "unknown"
}

// Snapshot is the state a decision is made over.
type Snapshot struct {
	Loading       bool
	Authenticated bool
	User          *dossier.User
	Inactive      bool
	AccessToken   string
}

// Requirement is the per-route gate. Zero values mean "no requirement";
// role and action checks are independent and may both apply.
type Requirement struct {
	Role   dossier.Role
	Action dossier.Action
}

// Evaluate applies the fixed precedence to a snapshot.
func Evaluate(snap Snapshot, req Requirement) Decision {
	if snap.Loading {
		return ShowLoading
	}
	if !snap.Authenticated || snap.Inactive || !TokenUsable(snap.AccessToken, time.Now()) {
		return RedirectLogin
	}
	if req.Role != "" && !dossier.HasPermission(snap.User, req.Role) {
		return RedirectDashboard
	}
	if req.Action != "" && !dossier.Can(snap.User, req.Action) {
		return RedirectDashboard
	}
	return Render
}

// TokenUsable reports whether the access token is present, structurally a
// JWT, and unexpired at the given instant. The expiry claim is decoded
// locally; signature verification stays the backend's job.
func TokenUsable(token string, at time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return at.Before(exp.Time)
}

// Snap captures the current state of a session controller, an inactivity
// monitor, and the token store into one Snapshot.
func Snap(ctrl *session.Controller, monitor *idle.Monitor, store dossier.TokenStore) Snapshot {
	snap := Snapshot{
		Loading:       ctrl.Loading(),
		Authenticated: ctrl.IsAuthenticated(),
		User:          ctrl.CurrentUser(),
		Inactive:      monitor != nil && monitor.IsInactive(),
	}
	if sess, err := store.Load(); err == nil && sess != nil {
		snap.AccessToken = sess.Credentials.AccessToken
	}
	return snap
}
