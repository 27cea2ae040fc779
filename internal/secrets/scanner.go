// SPDX-License-Identifier: MPL-2.0

package secrets

import "strings"

// Prefix marks environment variables that participate in secret resolution.
// The prefix is stripped from keys in the pipeline output.
const Prefix = "RUNSEC_SECRET_"

// CandidateEntry is one prefixed variable selected for resolution.
// Immutable after creation.
type CandidateEntry struct {
	// Key is the variable name with Prefix stripped. Dependency tokens
	// ($NAME, ${NAME}) in other candidate values refer to this key.
	Key string
	// RawValue is the value exactly as found in the snapshot.
	RawValue string
}

// Scan selects candidate entries from an environ snapshot ("KEY=VALUE"
// strings, as returned by os.Environ). Snapshot order is preserved; it is
// the tie-break order for every later stage, so output is reproducible for
// the same input. Names equal to the bare prefix are skipped.
func Scan(environ []string) []CandidateEntry {
	var entries []CandidateEntry
	seen := make(map[string]bool)

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, Prefix) {
			continue
		}
		key := strings.TrimPrefix(name, Prefix)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, CandidateEntry{Key: key, RawValue: value})
	}

	return entries
}
