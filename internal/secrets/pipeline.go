// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"runsec-cli/internal/expand"
)

type (
	// Pipeline runs the full resolution pass: scan an environ snapshot,
	// resolve secret references, expand inter-variable dependencies, and
	// produce the final prefix-stripped mapping. A Pipeline is a pure
	// function of its snapshot and backend; it holds no state between runs
	// beyond the resolver cache, which lives for one Run.
	Pipeline struct {
		resolver *Resolver
		failFast bool
	}

	// Result is the outcome of one pipeline run. Entries whose value could
	// not be parsed or resolved are listed in Failures and omitted from
	// Env; the caller decides whether that aborts or merely warns.
	Result struct {
		// Env maps prefix-stripped names to fully resolved values.
		Env map[string]string
		// Failures holds one entry per candidate that failed.
		Failures []*EntryError
	}

	// parsedEntry pairs a candidate with its reference spans.
	parsedEntry struct {
		entry CandidateEntry
		refs  []Reference
	}
)

// NewPipeline builds a Pipeline over the given backend. workers bounds the
// resolution pool (<= 0 selects DefaultWorkers). With failFast, the first
// resolution failure aborts the run instead of being collected.
func NewPipeline(backend Backend, workers int, failFast bool) *Pipeline {
	return &Pipeline{
		resolver: NewResolver(backend, workers),
		failFast: failFast,
	}
}

// Metrics exposes backend call statistics for the most recent run.
func (p *Pipeline) Metrics() *Metrics { return p.resolver.Metrics() }

// Run executes the resolution pass against an environ snapshot. The
// snapshot is captured once by the caller and never re-read, so repeated
// runs over the same snapshot produce the same result regardless of
// scheduling. A CycleError from the expansion phase is fatal: no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, environ []string) (*Result, error) {
	start := time.Now()

	entries := Scan(environ)
	log.Debug("scanned candidate variables", "prefix", Prefix, "count", len(entries))
	if len(entries) == 0 {
		return &Result{Env: map[string]string{}}, nil
	}

	parsed, failures := parseEntries(entries)

	outcomes, err := p.resolveReferences(ctx, parsed)
	if err != nil {
		return nil, err
	}

	values, keys, failures := substituteSecrets(parsed, outcomes, failures)

	final, err := expand.Expand(keys, values)
	if err != nil {
		return nil, err
	}

	p.resolver.Metrics().LogSummary(time.Since(start))
	return &Result{Env: final, Failures: failures}, nil
}

// parseEntries locates the reference spans in every candidate value.
// A malformed value fails only its own entry.
func parseEntries(entries []CandidateEntry) ([]parsedEntry, []*EntryError) {
	var parsed []parsedEntry
	var failures []*EntryError

	for _, entry := range entries {
		refs, err := ParseReferences(entry.RawValue)
		if err != nil {
			failures = append(failures, &EntryError{Key: entry.Key, Err: err})
			continue
		}
		parsed = append(parsed, parsedEntry{entry: entry, refs: refs})
	}

	return parsed, failures
}

// resolveReferences dispatches every distinct reference text across all
// entries to the resolver. References are independent of each other, so
// they run concurrently; the resolver's barrier guarantees all outcomes
// are in before this returns.
func (p *Pipeline) resolveReferences(ctx context.Context, parsed []parsedEntry) (map[string]Outcome, error) {
	var texts []string
	for _, pe := range parsed {
		for _, ref := range pe.refs {
			texts = append(texts, ref.Text)
		}
	}
	return p.resolver.ResolveAll(ctx, texts, p.failFast)
}

// substituteSecrets splices resolved values into each entry's spans.
// An entry with any failed reference is dropped into the failure list; the
// remaining entries keep their scan order, which fixes the deterministic
// candidate order for expansion.
func substituteSecrets(parsed []parsedEntry, outcomes map[string]Outcome, failures []*EntryError) (map[string]string, []string, []*EntryError) {
	values := make(map[string]string, len(parsed))
	keys := make([]string, 0, len(parsed))

	for _, pe := range parsed {
		value, err := spliceSpans(pe.entry.RawValue, pe.refs, outcomes)
		if err != nil {
			failures = append(failures, &EntryError{Key: pe.entry.Key, Err: err})
			continue
		}
		keys = append(keys, pe.entry.Key)
		values[pe.entry.Key] = value
	}

	return values, keys, failures
}

// spliceSpans rebuilds a value with each reference span replaced by its
// resolved secret. Spans are ordered and non-overlapping by the parser
// contract. The first failed reference fails the whole value.
func spliceSpans(raw string, refs []Reference, outcomes map[string]Outcome) (string, error) {
	if len(refs) == 0 {
		return raw, nil
	}

	var b strings.Builder
	last := 0
	for _, ref := range refs {
		outcome := outcomes[ref.Text]
		if outcome.Err != nil {
			return "", outcome.Err
		}
		b.WriteString(raw[last:ref.Start])
		b.WriteString(outcome.Value)
		last = ref.End
	}
	b.WriteString(raw[last:])

	return b.String(), nil
}
