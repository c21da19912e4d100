// Package retrypolicy wraps one-shot backend calls with bounded resilience:
// a small retry budget with a fixed delay between attempts, and a fail-fast
// timeout that races each attempt against a timer. Retry count and timeout
// are independent axes; every attempt gets its own timeout window.
package retrypolicy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrCallTimeout marks an attempt that produced no response within the
// policy's timeout window. It classifies as a service-unavailable failure
// downstream, distinct from a call that returned an error.
var ErrCallTimeout = errors.New("backend call timeout")

// Policy bounds the behavior of a wrapped call.
type Policy struct {
	// Attempts is the total number of tries, including the first. Values
	// below 1 are treated as 1. Mutations use 1 so side effects are never
	// duplicated automatically.
	Attempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// Timeout is the per-attempt deadline. Zero disables the race and the
	// attempt runs until the operation or the caller's context ends.
	Timeout time.Duration
}

// NoRetry is the mutation-side policy: a single attempt with the given
// fail-fast timeout.
func NoRetry(timeout time.Duration) Policy {
	return Policy{Attempts: 1, Timeout: timeout}
}

type outcome[T any] struct {
	value T
	err   error
}

// Do runs op under the policy and returns its first successful result, or the
// error of the final attempt. The operation runs in its own goroutine so that
// a hung call cannot outlive the timeout window; a late result from an
// abandoned attempt is discarded.
func Do[T any](ctx context.Context, p Policy, logger zerolog.Logger, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := runAttempt(ctx, p.Timeout, op)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt < attempts {
			logger.Debug().
				Err(err).
				Int("attempt", attempt).
				Int("budget", attempts).
				Msg("Backend call failed, retrying after delay.")
			if err := sleep(ctx, p.Delay); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		value, err := op(attemptCtx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			// The caller's context ended; this is cancellation, not a timeout.
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w: no response within %s", ErrCallTimeout, timeout)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
