// Package retry re-runs an operation with capped exponential backoff.
//
// By default only errors marked with Retryable are retried: the record store
// backends mark transaction conflicts and the Redis locker marks busy keys,
// so a plain error always stops the loop. Callers that want to retry
// everything (startup dials) pass WithRetryIf.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as safe to retry. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err or anything it wraps was marked Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// unmark strips the outermost marker so callers see the original error.
func unmark(err error) error {
	if re, ok := err.(*retryableError); ok {
		return re.err
	}
	return err
}

// Backoff describes the delay schedule.
type Backoff struct {
	Attempts int           // total attempts, including the first
	Base     time.Duration // delay after the first failure
	Cap      time.Duration // upper bound of a single delay
	Factor   float64       // growth per attempt, >= 1
	Jitter   float64       // +/- fraction of the delay, 0..1
}

// Delay returns the wait after the given failed attempt (1-based), with
// jitter drawn from rnd in [0,1).
func (b Backoff) Delay(attempt int, rnd float64) time.Duration {
	d := float64(b.Base) * math.Pow(b.Factor, float64(attempt-1))
	if c := float64(b.Cap); b.Cap > 0 && d > c {
		d = c
	}
	d += d * b.Jitter * (rnd*2 - 1)
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}

// Option customizes a Retrier.
type Option func(*Retrier)

// WithRetryIf replaces the Retryable check.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) { r.retryIf = fn }
}

// WithOnRetry is called before every wait.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// Retrier runs operations under one Backoff.
type Retrier struct {
	backoff Backoff
	retryIf func(error) bool
	onRetry func(attempt int, err error, delay time.Duration)
}

// New creates a Retrier. Zero fields of b fall back to one attempt and
// factor 1.
func New(b Backoff, opts ...Option) *Retrier {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	if b.Factor < 1 {
		b.Factor = 1
	}
	r := &Retrier{backoff: b, retryIf: IsRetryable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The returned error has its Retryable marker
// removed.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return unmark(last)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err
		if !r.retryIf(err) || attempt >= r.backoff.Attempts {
			return unmark(err)
		}

		delay := r.backoff.Delay(attempt, rand.Float64())
		if r.onRetry != nil {
			r.onRetry(attempt, err, delay)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return unmark(last)
		case <-t.C:
		}
	}
}

// DoWithData is Do for operations that produce a value.
func DoWithData[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

// Schedules used by Study Hub.
var (
	// TxConflict: conflicts clear quickly, so delays stay short.
	TxConflict = Backoff{Attempts: 8, Base: 2 * time.Millisecond, Cap: 100 * time.Millisecond, Factor: 2, Jitter: 0.5}

	// LockSpin polls a busy per-key lock.
	LockSpin = Backoff{Attempts: 50, Base: 5 * time.Millisecond, Cap: 200 * time.Millisecond, Factor: 1.5, Jitter: 0.3}

	// Connect covers dependencies that start after the service.
	Connect = Backoff{Attempts: 5, Base: 500 * time.Millisecond, Cap: 10 * time.Second, Factor: 2, Jitter: 0.2}
)

// ConnectRetrier retries every error of a startup dial.
func ConnectRetrier(onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(Connect, WithRetryIf(func(error) bool { return true }), WithOnRetry(onRetry))
}
