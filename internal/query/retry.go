package query

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryDelay returns min(base*2^attempt, max) for a zero based attempt.
func RetryDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= max || delay <= 0 {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// RetryDelays lists the waits opts produces before each retry, at most n.
func RetryDelays(opts Options, n int) []time.Duration {
	schedule := newBackOff(opts.normalized())
	var out []time.Duration
	for len(out) < n {
		delay := schedule.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		out = append(out, delay)
	}
	return out
}

// Retryable is the default RetryPolicy predicate. Cancellation is never
// retried, errors exposing Temporary follow it, errors exposing Permanent are
// not retried, and anything else is assumed to be a transient network fault.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) {
		return temporary.Temporary()
	}
	var permanent interface{ Permanent() bool }
	if errors.As(err, &permanent) {
		return !permanent.Permanent()
	}
	return true
}

// newBackOff builds a deterministic doubling schedule capped at
// RetryMaxDelay. It returns backoff.Stop after opts.Retry delays.
func newBackOff(opts Options) backoff.BackOff {
	if opts.Retry <= 0 {
		return &backoff.StopBackOff{}
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = opts.RetryBaseDelay
	exp.MaxInterval = opts.RetryMaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithMaxRetries(exp, uint64(opts.Retry))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
