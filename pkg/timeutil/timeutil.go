// Package timeutil provides the clock abstraction and the rolling time windows
// used by streak and activity rules. All windows are elapsed-time based, not
// calendar based. No external dependencies - uses only standard library.
package timeutil

import (
	"sync"
	"time"
)

const (
	// Day is one rolling day.
	Day = 24 * time.Hour

	// Week is one rolling week.
	Week = 7 * Day
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a manually advanced clock for tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Elapsed returns now - then. Negative when then lies in the future.
func Elapsed(now, then time.Time) time.Duration {
	return now.Sub(then)
}

// WithinTrailing reports whether now - t < window. Timestamps after now
// count as inside the window.
func WithinTrailing(now, t time.Time, window time.Duration) bool {
	return now.Sub(t) < window
}
