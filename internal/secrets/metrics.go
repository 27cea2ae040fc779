// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type (
	// BackendCall records one backend lookup. References are stored;
	// resolved values are not.
	BackendCall struct {
		Reference string
		Elapsed   time.Duration
		OK        bool
	}

	// Metrics accumulates per-run resolution statistics. Safe for use from
	// concurrent resolver workers.
	Metrics struct {
		mu        sync.Mutex
		calls     []BackendCall
		succeeded int
		failed    int
	}
)

// NewMetrics creates empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds one backend call observation.
func (m *Metrics) Record(reference string, elapsed time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, BackendCall{Reference: reference, Elapsed: elapsed, OK: ok})
	if ok {
		m.succeeded++
	} else {
		m.failed++
	}
}

// Calls returns a copy of the recorded backend calls.
func (m *Metrics) Calls() []BackendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BackendCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of backend calls made so far.
func (m *Metrics) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LogSummary emits a debug-level summary of the run: call counts and the
// slowest lookup. Reference texts only, never values.
func (m *Metrics) LogSummary(total time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var slowest BackendCall
	for _, c := range m.calls {
		if c.Elapsed > slowest.Elapsed {
			slowest = c
		}
	}

	log.Debug("secret resolution summary",
		"calls", len(m.calls),
		"succeeded", m.succeeded,
		"failed", m.failed,
		"total", total,
		"slowest_ref", slowest.Reference,
		"slowest_elapsed", slowest.Elapsed,
	)
}
