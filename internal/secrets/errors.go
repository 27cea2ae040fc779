// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a backend could not resolve a reference.
type FailureKind string

const (
	// FailureNotFound means the backend has no item for the reference.
	FailureNotFound FailureKind = "not-found"
	// FailureUnavailable means the backend itself could not be reached
	// (client binary missing, daemon down, transport error).
	FailureUnavailable FailureKind = "backend-unavailable"
	// FailureTimeout means the backend call exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureDenied means the backend refused access to the item.
	FailureDenied FailureKind = "denied"
)

type (
	// ParseError reports malformed reference syntax inside a single value:
	// an unterminated opening delimiter, or a delimiter opened inside an
	// already-open reference.
	ParseError struct {
		// Pos is the byte offset of the offending delimiter.
		Pos int
		// Reason describes the malformation.
		Reason string
	}

	// ResolutionError reports a single failed backend lookup. It carries the
	// reference text (safe to log) but never the resolved value.
	ResolutionError struct {
		// Reference is the reference text that failed to resolve.
		Reference string
		// Kind classifies the failure.
		Kind FailureKind
		// Cause is the underlying backend error, if any.
		Cause error
	}

	// EntryError ties a failure to the candidate variable it occurred in.
	// Entries with errors are omitted from the pipeline output.
	EntryError struct {
		// Key is the candidate key (prefix already stripped).
		Key string
		// Err is the ParseError or ResolutionError for this entry.
		Err error
	}
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed secret reference at offset %d: %s", e.Pos, e.Reason)
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.Reference, e.Kind, e.Cause)
	}
	return fmt.Sprintf("resolve %s: %s", e.Reference, e.Kind)
}

// Unwrap returns the underlying backend error for errors.Is/As chains.
func (e *ResolutionError) Unwrap() error { return e.Cause }

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// Unwrap returns the per-entry failure.
func (e *EntryError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain, or
// FailureUnavailable when the chain carries no ResolutionError.
func KindOf(err error) FailureKind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return FailureUnavailable
}
