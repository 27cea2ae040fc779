// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors that carry enough context to
// act on: the operation that failed, the resource involved, and concrete
// suggestions. The run/check commands surface these instead of bare error
// strings so a cycle or backend failure points at the fix.
package issue
