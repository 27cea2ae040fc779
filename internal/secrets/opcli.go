// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultOpTimeout caps a single `op read` call. The op CLI can stall on
// biometric/desktop-app prompts; without a cap one stuck lookup blocks the
// whole phase barrier.
const DefaultOpTimeout = 45 * time.Second

// OpCLI resolves op:// references by shelling out to the 1Password CLI
// (`op read <reference>`). It is the production Backend; everything above
// it only sees the Backend interface.
type OpCLI struct {
	// Binary is the op executable name or path. Empty means "op".
	Binary string
	// Timeout bounds each read call. Zero means DefaultOpTimeout.
	Timeout time.Duration
}

// NewOpCLI creates an OpCLI backend with defaults filled in.
func NewOpCLI(binary string, timeout time.Duration) *OpCLI {
	if binary == "" {
		binary = "op"
	}
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return &OpCLI{Binary: binary, Timeout: timeout}
}

// Resolve runs `op read` for one reference and classifies failures into
// the resolution taxonomy. The resolved value is returned with trailing
// newlines trimmed and is never logged here.
func (b *OpCLI) Resolve(ctx context.Context, reference string) (string, error) {
	if _, err := exec.LookPath(b.Binary); err != nil {
		return "", &ResolutionError{
			Reference: reference,
			Kind:      FailureUnavailable,
			Cause:     fmt.Errorf("1Password CLI (%s) not found in PATH: %w", b.Binary, err),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Binary, "read", reference)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return strings.TrimRight(stdout.String(), "\r\n"), nil
	}

	if ctx.Err() != nil {
		return "", &ResolutionError{
			Reference: reference,
			Kind:      FailureTimeout,
			Cause:     ctx.Err(),
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &ResolutionError{
			Reference: reference,
			Kind:      classifyOpError(stderr.String()),
			Cause:     fmt.Errorf("op read failed: %s", strings.TrimSpace(stderr.String())),
		}
	}

	return "", &ResolutionError{Reference: reference, Kind: FailureUnavailable, Cause: err}
}

// classifyOpError maps op CLI stderr text to a failure kind. The CLI has
// no machine-readable error channel, so this is keyword matching on the
// messages it actually prints.
func classifyOpError(stderr string) FailureKind {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "isn't an item"),
		strings.Contains(msg, "not found"),
		strings.Contains(msg, "no item"),
		strings.Contains(msg, "doesn't exist"):
		return FailureNotFound
	case strings.Contains(msg, "denied"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "not signed in"),
		strings.Contains(msg, "authorization"):
		return FailureDenied
	default:
		return FailureUnavailable
	}
}
