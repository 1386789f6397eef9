// Package retry wraps fallible operations with a fixed attempt budget and
// a capped exponential cooldown between attempts.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how often an operation may be attempted and how long to
// wait between attempts.
//
// The zero value is not usable; construct policies with NewPolicy so that
// an invalid budget is rejected once at startup instead of surfacing in
// the middle of a run.
type Policy struct {
	maxAttempts int
	initial     time.Duration
	maxInterval time.Duration
}

// InvalidPolicyError reports a retry budget that cannot be executed.
type InvalidPolicyError struct {
	MaxAttempts int
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("retry: max attempts must be at least 1, got %d", e.MaxAttempts)
}

// NewPolicy creates a Policy with the given attempt budget.
//
// maxAttempts counts the first try: a budget of 1 means no retries at all.
// A budget below 1 returns an InvalidPolicyError.
func NewPolicy(maxAttempts int) (Policy, error) {
	if maxAttempts < 1 {
		return Policy{}, &InvalidPolicyError{MaxAttempts: maxAttempts}
	}
	return Policy{
		maxAttempts: maxAttempts,
		initial:     200 * time.Millisecond,
		maxInterval: 10 * time.Second,
	}, nil
}

// MaxAttempts returns the attempt budget.
func (p Policy) MaxAttempts() int { return p.maxAttempts }

func (p Policy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = 0 // the attempt budget bounds the loop, not wall time
	return b
}

// ExhaustedError is returned by Do after every attempt has failed. It
// keeps the per-attempt errors in order, so callers can inspect both the
// first and the final failure.
type ExhaustedError struct {
	Attempts []error
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "retry: %d attempts failed", len(e.Attempts))
	if last := e.Last(); last != nil {
		fmt.Fprintf(&b, ", last: %v", last)
	}
	return b.String()
}

// Last returns the error from the final attempt.
func (e *ExhaustedError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// Unwrap exposes the per-attempt errors to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error { return e.Attempts }

// Do runs op until it succeeds or the policy's attempt budget is spent.
//
// On the first success the result is returned immediately. Once the
// budget is exhausted Do returns the zero value of T and an
// *ExhaustedError carrying every attempt's error in order.
//
// Between attempts Do sleeps for the policy's cooldown, honoring context
// cancellation; a canceled context aborts the loop and the context error
// is recorded as the final attempt error.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	b := p.newBackOff()

	var attempts []error
	for try := 0; try < p.maxAttempts; try++ {
		if try > 0 {
			select {
			case <-ctx.Done():
				attempts = append(attempts, ctx.Err())
				return zero, &ExhaustedError{Attempts: attempts}
			case <-time.After(b.NextBackOff()):
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		attempts = append(attempts, err)
	}

	return zero, &ExhaustedError{Attempts: attempts}
}
