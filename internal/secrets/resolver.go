// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent backend calls when no explicit pool size
// is configured. Secret manager CLIs tolerate modest parallelism; anything
// higher mostly queues inside the backend.
const DefaultWorkers = 8

type (
	// Backend resolves one reference text to its secret value or a typed
	// error. Implementations should return ResolutionError so failures keep
	// their kind; any other error is classified as backend-unavailable.
	Backend interface {
		Resolve(ctx context.Context, reference string) (string, error)
	}

	// Outcome is the terminal result for one distinct reference text.
	Outcome struct {
		// Value is the resolved secret. Valid only when Err is nil.
		Value string
		// Err is the ResolutionError for this reference, if it failed.
		Err error
	}

	// Resolver dispatches distinct reference texts to a Backend through a
	// bounded worker pool and caches outcomes for the lifetime of one
	// pipeline run. Identical text across any number of entries resolves
	// exactly once.
	Resolver struct {
		backend Backend
		workers int
		metrics *Metrics

		mu    sync.Mutex
		cache map[string]Outcome
	}
)

// NewResolver creates a Resolver around the given backend. workers <= 0
// selects DefaultWorkers.
func NewResolver(backend Backend, workers int) *Resolver {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{
		backend: backend,
		workers: workers,
		metrics: NewMetrics(),
		cache:   make(map[string]Outcome),
	}
}

// Metrics returns the resolver's call metrics.
func (r *Resolver) Metrics() *Metrics { return r.metrics }

// ResolveAll resolves every distinct reference text concurrently and
// returns only after all dispatched lookups have finished, success or
// failure. One failure does not cancel the others unless failFast is set,
// in which case the first failure is returned and the context handed to
// in-flight backend calls is canceled.
//
// The returned map has one Outcome per distinct input text. Cached texts
// from an earlier call in the same run are served without a backend call.
func (r *Resolver) ResolveAll(ctx context.Context, texts []string, failFast bool) (map[string]Outcome, error) {
	pending := r.dedupe(texts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, text := range pending {
		g.Go(func() error {
			outcome := r.lookup(gctx, text)
			r.mu.Lock()
			r.cache[text] = outcome
			r.mu.Unlock()
			if failFast && outcome.Err != nil {
				return outcome.Err
			}
			return nil
		})
	}

	// Barrier: phase 3 decisions must not race in-flight lookups.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[string]Outcome, len(texts))
	r.mu.Lock()
	for _, text := range texts {
		if outcome, ok := r.cache[text]; ok {
			results[text] = outcome
		}
	}
	r.mu.Unlock()

	return results, nil
}

// dedupe returns the input texts minus duplicates and already-cached
// entries, preserving first-seen order. The once-per-distinct-text dispatch
// rule also guarantees no two workers write the same cache key.
func (r *Resolver) dedupe(texts []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []string
	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		if seen[text] {
			continue
		}
		seen[text] = true
		if _, cached := r.cache[text]; cached {
			continue
		}
		pending = append(pending, text)
	}
	return pending
}

// lookup performs one backend call and records its timing. The reference
// text is safe to log; the resolved value never is.
func (r *Resolver) lookup(ctx context.Context, text string) Outcome {
	start := time.Now()
	value, err := r.backend.Resolve(ctx, text)
	elapsed := time.Since(start)

	if err != nil {
		resErr := asResolutionError(text, err)
		r.metrics.Record(text, elapsed, false)
		log.Debug("secret resolution failed", "reference", text, "kind", resErr.Kind, "elapsed", elapsed)
		return Outcome{Err: resErr}
	}

	r.metrics.Record(text, elapsed, true)
	log.Debug("secret resolved", "reference", text, "elapsed", elapsed)
	return Outcome{Value: value}
}

// asResolutionError normalizes backend errors into ResolutionError,
// mapping context errors to the timeout kind.
func asResolutionError(text string, err error) *ResolutionError {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re
	}
	kind := FailureUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = FailureTimeout
	}
	return &ResolutionError{Reference: text, Kind: kind, Cause: err}
}
