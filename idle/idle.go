// Package idle tracks user inactivity.
//
// A Monitor records the wall-clock time of the last qualifying interaction
// and flips an inactive flag once a fixed idle threshold elapses. The flag
// is only ever set by the periodic check and only ever cleared by activity,
// so the two paths cannot race each other into an inconsistent pair of
// timestamp and flag. Becoming inactive does not destroy the session; it
// blocks protected navigation until the user reconnects or logs out.
package idle

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sogedesk/dossier-go/metrics"
)

// Documented defaults, overridable via options.
const (
	DefaultThreshold     = 10 * time.Minute
	DefaultCheckInterval = 30 * time.Second
	DefaultThrottle      = 500 * time.Millisecond
)

// EventKind is a user-interaction event type that qualifies as activity.
type EventKind string

const (
	EventPointerDown EventKind = "pointerdown"
	EventPointerMove EventKind = "pointermove"
	EventKeyPress    EventKind = "keypress"
	EventScroll      EventKind = "scroll"
	EventTouchStart  EventKind = "touchstart"
)

// qualifying is the fixed set of event kinds that reset the timer.
var qualifying = map[EventKind]bool{
	EventPointerDown: true,
	EventPointerMove: true,
	EventKeyPress:    true,
	EventScroll:      true,
	EventTouchStart:  true,
}

// Monitor watches for inactivity. Safe for concurrent use.
type Monitor struct {
	threshold     time.Duration
	checkInterval time.Duration
	throttle      time.Duration
	now           func() time.Time
	logger        *slog.Logger
	metrics       *metrics.Metrics
	onChange      func(inactive bool)

	mu            sync.Mutex
	lastActivity  time.Time
	throttleUntil time.Time
	inactive      bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures the Monitor.
type Option func(*Monitor)

// WithThreshold overrides the idle threshold.
func WithThreshold(d time.Duration) Option {
	return func(m *Monitor) { m.threshold = d }
}

// WithCheckInterval overrides the periodic check interval.
func WithCheckInterval(d time.Duration) Option {
	return func(m *Monitor) { m.checkInterval = d }
}

// WithThrottle overrides the activity-write throttle window.
func WithThrottle(d time.Duration) Option {
	return func(m *Monitor) { m.throttle = d }
}

// WithClock injects a time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(mm *metrics.Metrics) Option {
	return func(m *Monitor) { m.metrics = mm }
}

// WithOnChange registers a callback fired on every flag transition.
func WithOnChange(fn func(inactive bool)) Option {
	return func(m *Monitor) { m.onChange = fn }
}

// New creates a Monitor and starts its periodic check. Close must be called
// to release the timer goroutine.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		threshold:     DefaultThreshold,
		checkInterval: DefaultCheckInterval,
		throttle:      DefaultThrottle,
		now:           time.Now,
		logger:        slog.Default(),
		metrics:       metrics.New(false),
		done:          make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	m.lastActivity = m.now()

	m.wg.Add(1)
	go m.run()
	return m
}

func (m *Monitor) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckNow()
		case <-m.done:
			return
		}
	}
}

// Observe reports a user-interaction event. Non-qualifying kinds are
// ignored; qualifying ones reset the timer through the throttle.
func (m *Monitor) Observe(kind EventKind) {
	if !qualifying[kind] {
		return
	}
	m.touch(false)
}

// ResetTimer resets the activity timestamp and clears the inactive flag,
// bypassing the throttle. Called on login and manual reconnect.
func (m *Monitor) ResetTimer() {
	m.touch(true)
}

// touch updates the activity timestamp. Inside the throttle window the write
// is skipped, except when the flag is set: clearing must never be delayed.
func (m *Monitor) touch(force bool) {
	m.mu.Lock()
	now := m.now()
	if !force && !m.inactive && now.Before(m.throttleUntil) {
		m.mu.Unlock()
		return
	}
	m.lastActivity = now
	m.throttleUntil = now.Add(m.throttle)
	wasInactive := m.inactive
	m.inactive = false
	m.mu.Unlock()

	if wasInactive {
		m.logger.Info("user active again")
		m.metrics.InactivityTransition("active")
		if m.onChange != nil {
			m.onChange(false)
		}
	}
}

// CheckNow runs one inactivity check. This is the only path that can set
// the flag. Exposed for deterministic tests; the internal ticker calls it
// every checkInterval.
func (m *Monitor) CheckNow() {
	m.mu.Lock()
	now := m.now()
	flip := !m.inactive && now.Sub(m.lastActivity) > m.threshold
	if flip {
		m.inactive = true
	}
	m.mu.Unlock()

	if flip {
		m.logger.Info("user inactive", "threshold", m.threshold)
		m.metrics.InactivityTransition("inactive")
		if m.onChange != nil {
			m.onChange(true)
		}
	}
}

// IsInactive reports whether the idle threshold has elapsed without
// qualifying activity.
func (m *Monitor) IsInactive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inactive
}

// LastActivity returns the timestamp of the last counted interaction.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Close stops the periodic check. Idempotent.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
	return nil
}
