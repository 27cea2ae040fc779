// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestResolveAll_DistinctTextsResolveOnce(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{
		"op://v/i/f": "42",
	}}
	r := NewResolver(backend, 4)

	// The same text appearing in multiple entries is dispatched once.
	texts := []string{"op://v/i/f", "op://v/i/f", "op://v/i/f"}
	outcomes, err := r.ResolveAll(context.Background(), texts, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backend.Calls("op://v/i/f") != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", backend.Calls("op://v/i/f"))
	}
	if outcomes["op://v/i/f"].Value != "42" {
		t.Errorf("unexpected outcome: %+v", outcomes["op://v/i/f"])
	}
}

func TestResolveAll_CachePersistsAcrossCalls(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{"op://v/i/f": "42"}}
	r := NewResolver(backend, 2)

	for range 3 {
		if _, err := r.ResolveAll(context.Background(), []string{"op://v/i/f"}, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if backend.TotalCalls() != 1 {
		t.Errorf("expected 1 backend call across runs, got %d", backend.TotalCalls())
	}
}

func TestResolveAll_FailureDoesNotBlockSiblings(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{
		Values: map[string]string{"op://v/ok/f": "fine"},
		Errs: map[string]error{
			"op://v/missing/f": &ResolutionError{Reference: "op://v/missing/f", Kind: FailureNotFound},
		},
	}
	r := NewResolver(backend, 4)

	outcomes, err := r.ResolveAll(context.Background(), []string{"op://v/missing/f", "op://v/ok/f"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes["op://v/ok/f"].Err != nil || outcomes["op://v/ok/f"].Value != "fine" {
		t.Errorf("independent reference should resolve: %+v", outcomes["op://v/ok/f"])
	}

	failed := outcomes["op://v/missing/f"]
	if failed.Err == nil {
		t.Fatal("expected failure outcome")
	}
	if KindOf(failed.Err) != FailureNotFound {
		t.Errorf("expected not-found kind, got %v", KindOf(failed.Err))
	}
}

func TestResolveAll_FailFast(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{
		Errs: map[string]error{
			"op://v/missing/f": &ResolutionError{Reference: "op://v/missing/f", Kind: FailureNotFound},
		},
	}
	r := NewResolver(backend, 4)

	_, err := r.ResolveAll(context.Background(), []string{"op://v/missing/f"}, true)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolutionError, got %T: %v", err, err)
	}
	if resErr.Kind != FailureNotFound {
		t.Errorf("expected not-found kind, got %v", resErr.Kind)
	}
}

func TestResolveAll_ManyConcurrentLookups(t *testing.T) {
	t.Parallel()
	values := make(map[string]string)
	var texts []string
	for _, r := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		ref := "op://vault/item-" + r + "/field"
		values[ref] = "secret-" + r
		texts = append(texts, ref)
	}

	backend := &MockBackend{Values: values}
	resolver := NewResolver(backend, 3)

	outcomes, err := resolver.ResolveAll(context.Background(), texts, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != len(texts) {
		t.Fatalf("expected %d outcomes, got %d", len(texts), len(outcomes))
	}
	for ref, want := range values {
		if outcomes[ref].Value != want {
			t.Errorf("reference %s resolved to %q, want %q", ref, outcomes[ref].Value, want)
		}
	}
	if backend.TotalCalls() != len(texts) {
		t.Errorf("expected %d backend calls, got %d", len(texts), backend.TotalCalls())
	}
}

func TestAsResolutionError_Classification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"typed error passes through", &ResolutionError{Reference: "r", Kind: FailureDenied}, FailureDenied},
		{"deadline maps to timeout", context.DeadlineExceeded, FailureTimeout},
		{"cancellation maps to timeout", context.Canceled, FailureTimeout},
		{"anything else is unavailable", errors.New("boom"), FailureUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := asResolutionError("op://v/i/f", tt.err)
			if got.Kind != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got.Kind)
			}
		})
	}
}

func TestMetrics_RecordsCalls(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{
		Values: map[string]string{"op://v/a/f": "1"},
		Errs: map[string]error{
			"op://v/b/f": &ResolutionError{Reference: "op://v/b/f", Kind: FailureNotFound},
		},
	}
	r := NewResolver(backend, 2)

	if _, err := r.ResolveAll(context.Background(), []string{"op://v/a/f", "op://v/b/f"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Metrics().CallCount() != 2 {
		t.Errorf("expected 2 recorded calls, got %d", r.Metrics().CallCount())
	}

	ok, failed := 0, 0
	for _, call := range r.Metrics().Calls() {
		if call.OK {
			ok++
		} else {
			failed++
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("expected 1 success and 1 failure, got %d/%d", ok, failed)
	}
}
