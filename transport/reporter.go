package transport

import "sync"

// The global error reporter surfaces terminal request failures to the
// embedding application for user-facing display. It defaults to a no-op and
// is configurable exactly once per process; later calls are ignored.

var (
	reporterMu   sync.RWMutex
	reporterSet  bool
	reporterFunc = func(error) {}
)

// SetErrorReporter installs the global error-reporting hook. Only the first
// call has any effect.
func SetErrorReporter(fn func(error)) {
	if fn == nil {
		return
	}
	reporterMu.Lock()
	defer reporterMu.Unlock()
	if reporterSet {
		return
	}
	reporterSet = true
	reporterFunc = fn
}

// Report forwards err to the configured hook.
func Report(err error) {
	reporterMu.RLock()
	fn := reporterFunc
	reporterMu.RUnlock()
	fn(err)
}

// resetReporter restores the default no-op hook. Tests only.
func resetReporter() {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	reporterSet = false
	reporterFunc = func(error) {}
}
