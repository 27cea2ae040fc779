// SPDX-License-Identifier: MPL-2.0

package expand

// graph is the dependency graph over candidate keys. An edge key -> dep
// exists when key's value contains a token naming dep and dep is itself a
// candidate. A self-token is an edge key -> key: a cycle of length one,
// reported like any other cycle rather than silently dropped.
type graph struct {
	// keys preserves candidate order for deterministic output.
	keys []string
	// inSet is the candidate-set membership test.
	inSet map[string]bool
	// dependents maps dep -> keys whose values reference it.
	dependents map[string][]string
	// depCount is the number of in-set dependencies per key.
	depCount map[string]int
}

func newGraph(keys []string, values map[string]string) *graph {
	g := &graph{
		keys:       keys,
		inSet:      make(map[string]bool, len(keys)),
		dependents: make(map[string][]string, len(keys)),
		depCount:   make(map[string]int, len(keys)),
	}
	for _, key := range keys {
		g.inSet[key] = true
	}

	for _, key := range keys {
		seen := make(map[string]bool)
		for _, dep := range Tokens(values[key]) {
			// Tokens naming non-candidates are dangling literals, not edges.
			if !g.inSet[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			g.dependents[dep] = append(g.dependents[dep], key)
			g.depCount[key]++
		}
	}

	return g
}

// topologicalOrder runs Kahn's algorithm: repeatedly emit keys whose
// remaining dependency count is zero, decrementing their dependents. Keys
// that tie are emitted in candidate order, so the order is reproducible
// across runs for the same input. Keys left over participate in at least
// one cycle.
func (g *graph) topologicalOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.keys))
	for _, key := range g.keys {
		remaining[key] = g.depCount[key]
	}

	var queue []string
	for _, key := range g.keys {
		if remaining[key] == 0 {
			queue = append(queue, key)
		}
	}

	order := make([]string, 0, len(g.keys))
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		order = append(order, key)

		for _, dependent := range g.dependents[key] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.keys) {
		var cycle []string
		for _, key := range g.keys {
			if remaining[key] > 0 {
				cycle = append(cycle, key)
			}
		}
		return nil, &CycleError{Keys: cycle}
	}

	return order, nil
}
