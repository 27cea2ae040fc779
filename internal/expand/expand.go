// SPDX-License-Identifier: MPL-2.0

// Package expand substitutes $NAME / ${NAME} tokens between resolved
// configuration values. Values form a directed dependency graph (an edge
// A -> B means A's text references B); expansion walks a topological order
// so every reference is replaced with an already-final value, in a single
// pass per key. Cycles are a terminal failure naming the keys involved.
package expand

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches dependency tokens: $NAME, or ${NAME} for when the
// reference must butt up against an alphanumeric character (${BASE}api).
// Names follow environment variable convention.
var tokenPattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}|\$([A-Z_][A-Z0-9_]*)`)

// CycleError means the dependency graph cannot be ordered. Keys lists every
// key participating in a cycle, in candidate order, so the offending
// configuration can be fixed directly.
type CycleError struct {
	Keys []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between variables: %s", strings.Join(e.Keys, " -> "))
}

// Tokens returns the names referenced by value, in order of appearance,
// duplicates included.
func Tokens(value string) []string {
	var names []string
	for _, m := range tokenPattern.FindAllStringSubmatch(value, -1) {
		if m[1] != "" {
			names = append(names, m[1])
		} else {
			names = append(names, m[2])
		}
	}
	return names
}

// Expand substitutes dependency tokens across all values and returns the
// final mapping. keys fixes the candidate set and its deterministic order;
// every key must be present in values.
//
// Tokens naming keys outside the candidate set are left as literal text:
// they may be ambient variables meant for the child process, or text that
// merely looks like a token. Substituted content is never re-scanned, so a
// secret value containing '$' cannot be re-interpreted as a reference.
func Expand(keys []string, values map[string]string) (map[string]string, error) {
	g := newGraph(keys, values)

	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}

	final := make(map[string]string, len(keys))
	for _, key := range order {
		final[key] = replaceTokens(values[key], final, g.inSet)
	}

	return final, nil
}

// replaceTokens rewrites candidate-set tokens in value using the finalized
// upstream values. One pass, no recursion.
func replaceTokens(value string, final map[string]string, inSet map[string]bool) string {
	return tokenPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimPrefix(name, "{")
		name = strings.TrimSuffix(name, "}")
		if !inSet[name] {
			return match
		}
		return final[name]
	})
}
