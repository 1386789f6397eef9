// Package pool provides bounded-parallelism execution of independent work
// units.
//
// Both entry points run at most `limit` workers at a time and always wait
// for every started unit to reach a terminal result: a failing worker
// never cancels its siblings. Cancelling the context stops new units from
// being scheduled, while units already in flight run to completion.
package pool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result pairs one work unit's outcome with the index of its input.
type Result[R any] struct {
	// Index is the position of the input item this result belongs to.
	Index int

	// Value is the worker's output; only meaningful when Err is nil.
	Value R

	// Err is the worker's failure, the context error if the unit was
	// never started because of cancellation, or nil on success.
	Err error
}

// InvalidLimitError reports a concurrency limit that cannot be used.
type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("pool: concurrency limit must be at least 1, got %d", e.Limit)
}

// Map runs fn over items with at most limit invocations in flight and
// returns the results in input order: results[i] always corresponds to
// items[i].
//
// Use this when a 1:1 correspondence with the input must be kept, e.g. so
// failed units can be filtered while tracking which input they came from.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]Result[R], error) {
	if limit < 1 {
		return nil, &InvalidLimitError{Limit: limit}
	}

	results := make([]Result[R], len(items))

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i] = Result[R]{Index: i, Err: err}
			continue
		}
		g.Go(func() error {
			// Re-check after waiting for a slot: cancellation while queued
			// must not start the unit.
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Index: i, Err: err}
				return nil
			}
			v, err := fn(ctx, item)
			results[i] = Result[R]{Index: i, Value: v, Err: err}
			return nil // sibling units keep running regardless
		})
	}

	// Each goroutine writes a distinct slice element, so Wait is the only
	// synchronization needed.
	_ = g.Wait()

	return results, nil
}

// MapUnordered runs fn over items with at most limit invocations in
// flight and returns results in completion order.
//
// Use this when result order is irrelevant and throughput matters; the
// Index field still records which input each result came from.
func MapUnordered[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]Result[R], error) {
	if limit < 1 {
		return nil, &InvalidLimitError{Limit: limit}
	}

	done := make(chan Result[R], len(items))

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			done <- Result[R]{Index: i, Err: err}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				done <- Result[R]{Index: i, Err: err}
				return nil
			}
			v, err := fn(ctx, item)
			done <- Result[R]{Index: i, Value: v, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(done)

	results := make([]Result[R], 0, len(items))
	for r := range done {
		results = append(results, r)
	}
	return results, nil
}
