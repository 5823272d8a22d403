package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := New("cache",
		WithFailureThreshold(2),
		WithSuccessThreshold(1),
		WithOpenTimeout(time.Minute),
		WithOnStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		}),
	)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(ctx, ok)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsRejection(err))

	now = now.Add(time.Minute)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := New("cache", WithFailureThreshold(1), WithOpenTimeout(time.Second))
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	now = now.Add(time.Second)
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrCircuitOpen)
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	miss := errors.New("miss")
	cb := New("cache", WithFailureThreshold(1), WithIsFailure(func(err error) bool {
		return !errors.Is(err, miss)
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func(context.Context) error { return miss })
	}
	assert.Equal(t, StateClosed, cb.State())
}
