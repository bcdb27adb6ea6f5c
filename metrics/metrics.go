// Package metrics provides Prometheus metrics for SDK operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for session and transport operations.
// The zero-value-like disabled instance is a safe no-op.
type Metrics struct {
	enabled bool

	loginAttemptsTotal *prometheus.CounterVec
	logoutsTotal       prometheus.Counter

	tokenRefreshTotal  *prometheus.CounterVec
	requestRetryTotal  prometheus.Counter
	sessionInvalidated prometheus.Counter

	permissionChecksTotal *prometheus.CounterVec
	guardDecisionsTotal   *prometheus.CounterVec

	inactivityTransitionsTotal *prometheus.CounterVec
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer sets a custom Prometheus registerer. Default: the global one.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool, opts ...Option) *Metrics {
	m := &Metrics{enabled: enabled}
	if !enabled {
		return m
	}

	o := &options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(o)
	}

	m.loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dossier_login_attempts_total",
		Help: "Total login attempts",
	}, []string{"result"})

	m.logoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dossier_logouts_total",
		Help: "Total logouts",
	})

	m.tokenRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dossier_token_refresh_total",
		Help: "Total access token refresh attempts",
	}, []string{"result"})

	m.requestRetryTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dossier_request_retry_total",
		Help: "Total requests retried after a refresh",
	})

	m.sessionInvalidated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dossier_session_invalidated_total",
		Help: "Total unrecoverable session invalidations",
	})

	m.permissionChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dossier_permission_checks_total",
		Help: "Total role and capability checks",
	}, []string{"kind", "result"})

	m.guardDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dossier_guard_decisions_total",
		Help: "Total route guard decisions",
	}, []string{"decision"})

	m.inactivityTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dossier_inactivity_transitions_total",
		Help: "Total inactivity flag transitions",
	}, []string{"state"})

	o.registerer.MustRegister(
		m.loginAttemptsTotal,
		m.logoutsTotal,
		m.tokenRefreshTotal,
		m.requestRetryTotal,
		m.sessionInvalidated,
		m.permissionChecksTotal,
		m.guardDecisionsTotal,
		m.inactivityTransitionsTotal,
	)
	return m
}

// LoginAttempt records a login attempt. result: "success" or "failure".
func (m *Metrics) LoginAttempt(result string) {
	if !m.enabled {
		return
	}
	m.loginAttemptsTotal.WithLabelValues(result).Inc()
}

// Logout records a logout.
func (m *Metrics) Logout() {
	if !m.enabled {
		return
	}
	m.logoutsTotal.Inc()
}

// TokenRefresh records a refresh attempt. result: "success" or "failure".
func (m *Metrics) TokenRefresh(result string) {
	if !m.enabled {
		return
	}
	m.tokenRefreshTotal.WithLabelValues(result).Inc()
}

// RequestRetried records a request re-sent after a successful refresh.
func (m *Metrics) RequestRetried() {
	if !m.enabled {
		return
	}
	m.requestRetryTotal.Inc()
}

// SessionInvalidated records an unrecoverable session invalidation.
func (m *Metrics) SessionInvalidated() {
	if !m.enabled {
		return
	}
	m.sessionInvalidated.Inc()
}

// PermissionCheck records a check. kind: "role" or "action"; result:
// "allowed" or "denied".
func (m *Metrics) PermissionCheck(kind, result string) {
	if !m.enabled {
		return
	}
	m.permissionChecksTotal.WithLabelValues(kind, result).Inc()
}

// GuardDecision records a route guard outcome.
func (m *Metrics) GuardDecision(decision string) {
	if !m.enabled {
		return
	}
	m.guardDecisionsTotal.WithLabelValues(decision).Inc()
}

// InactivityTransition records the inactive flag changing. state: "inactive"
// or "active".
func (m *Metrics) InactivityTransition(state string) {
	if !m.enabled {
		return
	}
	m.inactivityTransitionsTotal.WithLabelValues(state).Inc()
}
