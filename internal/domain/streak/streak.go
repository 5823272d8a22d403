// Package streak implements the consecutive-activity rule.
//
// A call within one rolling day (inclusive) of the previous activity extends
// the streak; anything later restarts it at 1. Every nonzero multiple of
// BonusInterval earns a bonus.
package streak

import (
	"fmt"
	"time"

	"github.com/alem-hub/studyhub/pkg/timeutil"
)

// BonusInterval is the milestone period in streak days.
const BonusInterval = 7

// Window is the maximum gap that still continues a streak.
const Window = timeutil.Day

// Policy tunes the tracker.
type Policy struct {
	// MinInterval ignores calls closer than this to the last counted
	// activity. Zero keeps the literal rule where every call counts.
	MinInterval time.Duration
}

// State is the persisted streak state of one user.
type State struct {
	Streak       uint32
	LastActiveAt time.Time
}

// Transition is the outcome of one Advance.
type Transition struct {
	Previous     uint32
	Current      uint32
	Reset        bool
	Throttled    bool
	BonusEarned  bool
	LastActiveAt time.Time
}

// Advance applies the rule at now.
func Advance(s State, now time.Time, p Policy) Transition {
	elapsed := timeutil.Elapsed(now, s.LastActiveAt)

	if p.MinInterval > 0 && s.Streak > 0 && elapsed >= 0 && elapsed < p.MinInterval {
		return Transition{
			Previous:     s.Streak,
			Current:      s.Streak,
			Throttled:    true,
			LastActiveAt: s.LastActiveAt,
		}
	}

	t := Transition{Previous: s.Streak, LastActiveAt: now}
	if elapsed <= Window {
		t.Current = s.Streak + 1
	} else {
		t.Current = 1
		t.Reset = true
	}
	t.BonusEarned = IsMilestone(t.Current)
	return t
}

// IsMilestone reports whether streak is a nonzero multiple of BonusInterval.
func IsMilestone(streak uint32) bool {
	return streak > 0 && streak%BonusInterval == 0
}

// AchievementName names the milestone achievement for streak.
func AchievementName(streak uint32) string {
	return fmt.Sprintf("%d-day study streak", streak)
}
