package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(25 * time.Hour)
	assert.Equal(t, 25*time.Hour, Elapsed(c.Now(), start))

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestWithinTrailing(t *testing.T) {
	now := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)

	assert.True(t, WithinTrailing(now, now.Add(-Week+time.Second), Week))
	assert.False(t, WithinTrailing(now, now.Add(-Week), Week))
	assert.True(t, WithinTrailing(now, now.Add(Day), Week), "future timestamps count")
}
