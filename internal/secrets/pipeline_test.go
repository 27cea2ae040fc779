// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"errors"
	"testing"

	"runsec-cli/internal/expand"
)

func runPipeline(t *testing.T, backend Backend, environ []string) *Result {
	t.Helper()
	result, err := NewPipeline(backend, 4, false).Run(context.Background(), environ)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	return result
}

func TestPipeline_EmptySnapshot(t *testing.T) {
	t.Parallel()
	result := runPipeline(t, &MockBackend{}, []string{"PATH=/usr/bin"})
	if len(result.Env) != 0 || len(result.Failures) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestPipeline_PlainValuesPassThrough(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_TOKEN=abc123",
		"RUNSEC_SECRET_API_KEY=xyz789",
	})

	if result.Env["TOKEN"] != "abc123" || result.Env["API_KEY"] != "xyz789" {
		t.Errorf("plain values must pass through unchanged: %v", result.Env)
	}
	if backend.TotalCalls() != 0 {
		t.Errorf("no references, expected no backend calls, got %d", backend.TotalCalls())
	}
}

func TestPipeline_DependencySuffix(t *testing.T) {
	t.Parallel()
	result := runPipeline(t, &MockBackend{}, []string{
		"RUNSEC_SECRET_A=x",
		"RUNSEC_SECRET_B=$A/suffix",
	})

	if result.Env["A"] != "x" {
		t.Errorf("A = %q, want x", result.Env["A"])
	}
	if result.Env["B"] != "x/suffix" {
		t.Errorf("B = %q, want x/suffix", result.Env["B"])
	}
}

func TestPipeline_CycleIsFatal(t *testing.T) {
	t.Parallel()
	_, err := NewPipeline(&MockBackend{}, 4, false).Run(context.Background(), []string{
		"RUNSEC_SECRET_A=$B",
		"RUNSEC_SECRET_B=$A",
	})

	var cycleErr *expand.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *expand.CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Keys) != 2 {
		t.Fatalf("expected both keys named, got %v", cycleErr.Keys)
	}
	for _, key := range []string{"A", "B"} {
		found := false
		for _, k := range cycleErr.Keys {
			if k == key {
				found = true
			}
		}
		if !found {
			t.Errorf("cycle error must name %s: %v", key, cycleErr.Keys)
		}
	}
}

func TestPipeline_DelimitedReferenceInURL(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{"op://v/i/f": "42"}}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_URL=https://h/{{op://v/i/f}}/tail",
	})

	if result.Env["URL"] != "https://h/42/tail" {
		t.Errorf("URL = %q, want https://h/42/tail", result.Env["URL"])
	}
}

func TestPipeline_SharedReferenceResolvesOnce(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{"op://v/i/f": "shared"}}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_FIRST=a-{{op://v/i/f}}",
		"RUNSEC_SECRET_SECOND={{op://v/i/f}}-b",
	})

	if result.Env["FIRST"] != "a-shared" || result.Env["SECOND"] != "shared-b" {
		t.Errorf("both values must contain the resolved secret: %v", result.Env)
	}
	if backend.TotalCalls() != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", backend.TotalCalls())
	}
}

func TestPipeline_PartialFailure(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{
		Values: map[string]string{"op://v/good/f": "fine"},
		Errs: map[string]error{
			"op://v/bad/f": &ResolutionError{Reference: "op://v/bad/f", Kind: FailureNotFound},
		},
	}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_GOOD={{op://v/good/f}}",
		"RUNSEC_SECRET_BAD={{op://v/bad/f}}",
	})

	if result.Env["GOOD"] != "fine" {
		t.Errorf("independent entry must resolve: %v", result.Env)
	}
	if _, present := result.Env["BAD"]; present {
		t.Error("failed entry must be omitted from output")
	}
	if len(result.Failures) != 1 || result.Failures[0].Key != "BAD" {
		t.Fatalf("expected one failure for BAD, got %+v", result.Failures)
	}
	if KindOf(result.Failures[0].Err) != FailureNotFound {
		t.Errorf("failure must keep its kind: %v", result.Failures[0].Err)
	}
}

func TestPipeline_ParseErrorFailsOnlyItsEntry(t *testing.T) {
	t.Parallel()
	result := runPipeline(t, &MockBackend{}, []string{
		"RUNSEC_SECRET_BROKEN={{op://v/i/f",
		"RUNSEC_SECRET_OK=value",
	})

	if result.Env["OK"] != "value" {
		t.Errorf("unrelated entry must survive a parse error: %v", result.Env)
	}
	if len(result.Failures) != 1 || result.Failures[0].Key != "BROKEN" {
		t.Fatalf("expected one failure for BROKEN, got %+v", result.Failures)
	}
	var parseErr *ParseError
	if !errors.As(result.Failures[0].Err, &parseErr) {
		t.Errorf("expected ParseError, got %v", result.Failures[0].Err)
	}
}

func TestPipeline_FailFast(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{
		Errs: map[string]error{
			"op://v/bad/f": &ResolutionError{Reference: "op://v/bad/f", Kind: FailureDenied},
		},
	}
	_, err := NewPipeline(backend, 4, true).Run(context.Background(), []string{
		"RUNSEC_SECRET_BAD={{op://v/bad/f}}",
	})

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolutionError, got %T: %v", err, err)
	}
	if resErr.Kind != FailureDenied {
		t.Errorf("expected denied kind, got %v", resErr.Kind)
	}
}

func TestPipeline_SecretThenDependency(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{"op://v/account/id": "cf-account"}}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_ACCOUNT={{op://v/account/id}}",
		"RUNSEC_SECRET_URL=https://gw.example.com/v1/$ACCOUNT/anthropic",
	})

	if result.Env["ACCOUNT"] != "cf-account" {
		t.Errorf("ACCOUNT = %q", result.Env["ACCOUNT"])
	}
	if result.Env["URL"] != "https://gw.example.com/v1/cf-account/anthropic" {
		t.Errorf("URL = %q", result.Env["URL"])
	}
}

func TestPipeline_UnknownTokenLeftLiteral(t *testing.T) {
	t.Parallel()
	result := runPipeline(t, &MockBackend{}, []string{
		"RUNSEC_SECRET_URL=https://api.example.com/$UNKNOWN_NAME",
	})

	if result.Env["URL"] != "https://api.example.com/$UNKNOWN_NAME" {
		t.Errorf("tokens naming non-candidates must stay literal: %q", result.Env["URL"])
	}
}

func TestPipeline_MixedBareAndChainedDependencies(t *testing.T) {
	t.Parallel()
	backend := &MockBackend{Values: map[string]string{
		"op://vault/test-item/api-key": "secret-api-key",
	}}
	result := runPipeline(t, backend, []string{
		"RUNSEC_SECRET_KEY=op://vault/test-item/api-key",
		"RUNSEC_SECRET_HEADER=authorization: Bearer $KEY",
	})

	if result.Env["KEY"] != "secret-api-key" {
		t.Errorf("KEY = %q", result.Env["KEY"])
	}
	if result.Env["HEADER"] != "authorization: Bearer secret-api-key" {
		t.Errorf("HEADER = %q", result.Env["HEADER"])
	}
}

func TestPipeline_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	environ := []string{
		"RUNSEC_SECRET_D=$B-$C",
		"RUNSEC_SECRET_B=$A-b",
		"RUNSEC_SECRET_C=$A-c",
		"RUNSEC_SECRET_A=a",
	}

	first := runPipeline(t, &MockBackend{}, environ)
	for range 5 {
		again := runPipeline(t, &MockBackend{}, environ)
		for k, v := range first.Env {
			if again.Env[k] != v {
				t.Fatalf("run differs for %s: %q vs %q", k, v, again.Env[k])
			}
		}
	}

	if first.Env["D"] != "a-b-a-c" {
		t.Errorf("D = %q, want a-b-a-c", first.Env["D"])
	}
}
