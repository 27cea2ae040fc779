// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"sort"
	"strings"

	"runsec-cli/internal/secrets"
)

// BuildEnv assembles the child environment: the host environ with
// RUNSEC_SECRET_* entries removed, then the resolved overlay on top.
// Overlay keys override host values of the same name. The overlay portion
// is appended in sorted key order so the slice is reproducible.
func BuildEnv(environ []string, overlay map[string]string) []string {
	env := filterPrefixed(environ)

	overridden := make(map[string]bool, len(overlay))
	for k := range overlay {
		overridden[k] = true
	}

	kept := env[:0]
	for _, kv := range env {
		name, _, ok := strings.Cut(kv, "=")
		if ok && overridden[name] {
			continue
		}
		kept = append(kept, kv)
	}

	return append(kept, EnvToSlice(overlay)...)
}

// EnvToSlice converts an env map to "KEY=VALUE" strings in sorted key order.
func EnvToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(env))
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}

// filterPrefixed drops RUNSEC_SECRET_* entries so unresolved reference
// text never leaks into the child.
func filterPrefixed(environ []string) []string {
	result := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(name, secrets.Prefix) {
			continue
		}
		result = append(result, kv)
	}
	return result
}
