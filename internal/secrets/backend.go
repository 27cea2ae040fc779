// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"errors"
	"sync"
)

// Disabled is a Backend for when no secret manager is configured.
// Reference-free variables still flow through the pipeline; any actual
// reference fails as backend-unavailable.
type Disabled struct{}

// Resolve always fails: there is no backend to ask.
func (Disabled) Resolve(_ context.Context, reference string) (string, error) {
	return "", &ResolutionError{
		Reference: reference,
		Kind:      FailureUnavailable,
		Cause:     errors.New("no secret manager configured"),
	}
}

// MockBackend is a map-backed Backend for tests. It counts calls per
// reference so cache behavior can be asserted, and is safe for the
// resolver's concurrent workers.
type MockBackend struct {
	// Values maps reference text to its resolved value.
	Values map[string]string
	// Errs maps reference text to a forced failure. Takes precedence
	// over Values.
	Errs map[string]error

	mu    sync.Mutex
	calls map[string]int
}

// Resolve returns the configured value or error for the reference.
// Unknown references fail with the not-found kind, like a real backend.
func (m *MockBackend) Resolve(_ context.Context, reference string) (string, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[reference]++
	m.mu.Unlock()

	if err, ok := m.Errs[reference]; ok {
		return "", err
	}
	if value, ok := m.Values[reference]; ok {
		return value, nil
	}
	return "", &ResolutionError{Reference: reference, Kind: FailureNotFound}
}

// Calls returns how many times the reference was resolved.
func (m *MockBackend) Calls(reference string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[reference]
}

// TotalCalls returns the backend invocation count across all references.
func (m *MockBackend) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}
