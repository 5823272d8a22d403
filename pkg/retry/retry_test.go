package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("busy")

func fast(attempts int) Backoff {
	return Backoff{Attempts: attempts, Base: time.Microsecond, Cap: time.Microsecond, Factor: 1}
}

func TestDo_RetriesMarkedErrorsUntilSuccess(t *testing.T) {
	calls := 0
	err := New(fast(5)).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errBusy)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPlainError(t *testing.T) {
	calls := 0
	err := New(fast(5)).Do(context.Background(), func(context.Context) error {
		calls++
		return errBusy
	})

	assert.Equal(t, errBusy, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustionReturnsUnmarkedError(t *testing.T) {
	calls := 0
	var retried []int
	r := New(fast(4), WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	}))
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errBusy)
	})

	assert.Equal(t, errBusy, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []int{1, 2, 3}, retried)
}

func TestDo_WrappedMarkerStillRetries(t *testing.T) {
	calls := 0
	err := New(fast(2)).Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("commit: %w", Retryable(errBusy))
	})

	assert.ErrorIs(t, err, errBusy)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 2, calls)
}

func TestDo_RetryIfOverridesMarker(t *testing.T) {
	calls := 0
	r := New(fast(3), WithRetryIf(func(error) bool { return true }))
	_ = r.Do(context.Background(), func(context.Context) error {
		calls++
		return errBusy
	})
	assert.Equal(t, 3, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := New(fast(3)).Do(ctx, func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	v, err := DoWithData(context.Background(), New(fast(3)), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return -1, Retryable(errBusy)
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Attempts: 10, Base: 10 * time.Millisecond, Cap: 50 * time.Millisecond, Factor: 2}

	assert.Equal(t, 10*time.Millisecond, b.Delay(1, 0.5))
	assert.Equal(t, 40*time.Millisecond, b.Delay(3, 0.5))
	assert.Equal(t, 50*time.Millisecond, b.Delay(6, 0.5), "capped")

	b.Jitter = 0.5
	assert.Equal(t, 5*time.Millisecond, b.Delay(1, 0))
	assert.Equal(t, 15*time.Millisecond, b.Delay(1, 1))
}

func TestRetryable_Nil(t *testing.T) {
	assert.NoError(t, Retryable(nil))
	assert.False(t, IsRetryable(errBusy))
}
