package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(t *testing.T, attempts int) Policy {
	t.Helper()
	p, err := NewPolicy(attempts)
	if err != nil {
		t.Fatalf("NewPolicy(%d) error = %v", attempts, err)
	}
	p.initial = time.Millisecond
	p.maxInterval = time.Millisecond
	return p
}

func TestNewPolicy_RejectsZeroAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewPolicy(n)
		var invalid *InvalidPolicyError
		if !errors.As(err, &invalid) {
			t.Errorf("NewPolicy(%d) error = %v, want InvalidPolicyError", n, err)
		}
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fastPolicy(t, 5), func(context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if v != "ok" {
		t.Errorf("Do() = %q, want %q", v, "ok")
	}
	if calls != 3 {
		t.Errorf("operation invoked %d times, want 3", calls)
	}
}

func TestDo_FirstSuccessReturnsImmediately(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(t, 5), func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	sentinel := errors.New("always fails")
	_, err := Do(context.Background(), fastPolicy(t, 4), func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})

	if calls != 4 {
		t.Errorf("operation invoked %d times, want 4", calls)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Do() error = %v, want ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 4 {
		t.Errorf("recorded %d attempt errors, want 4", len(exhausted.Attempts))
	}
	if !errors.Is(err, sentinel) {
		t.Error("ExhaustedError should unwrap to the attempt errors")
	}
	if exhausted.Last() != sentinel {
		t.Errorf("Last() = %v, want sentinel", exhausted.Last())
	}
}

func TestDo_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastPolicy(t, 10), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times after cancel, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled in chain", err)
	}
}
