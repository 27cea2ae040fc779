// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"testing"
	"time"
)

func TestNewOpCLI_Defaults(t *testing.T) {
	t.Parallel()
	b := NewOpCLI("", 0)
	if b.Binary != "op" {
		t.Errorf("expected default binary op, got %q", b.Binary)
	}
	if b.Timeout != DefaultOpTimeout {
		t.Errorf("expected default timeout, got %v", b.Timeout)
	}
}

func TestOpCLI_MissingBinaryIsUnavailable(t *testing.T) {
	t.Parallel()
	b := NewOpCLI("definitely-not-a-real-binary-1748", time.Second)

	_, err := b.Resolve(context.Background(), "op://v/i/f")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if KindOf(err) != FailureUnavailable {
		t.Errorf("expected backend-unavailable, got %v", KindOf(err))
	}
}

func TestClassifyOpError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		stderr string
		want   FailureKind
	}{
		{"item not found", "[ERROR] \"api-key\" isn't an item in the \"vault\" vault", FailureNotFound},
		{"generic not found", "[ERROR] item not found", FailureNotFound},
		{"vault missing", "[ERROR] vault doesn't exist", FailureNotFound},
		{"access denied", "[ERROR] access denied to item", FailureDenied},
		{"signed out", "[ERROR] you are not signed in", FailureDenied},
		{"unauthorized", "[ERROR] unauthorized", FailureDenied},
		{"anything else", "[ERROR] connection reset by peer", FailureUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyOpError(tt.stderr); got != tt.want {
				t.Errorf("classifyOpError(%q) = %v, want %v", tt.stderr, got, tt.want)
			}
		})
	}
}
