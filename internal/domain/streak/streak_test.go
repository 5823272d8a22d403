package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		after     time.Duration
		want      uint32
		wantReset bool
		wantBonus bool
	}{
		{name: "within a day increments", state: State{Streak: 3, LastActiveAt: t0}, after: 12 * time.Hour, want: 4},
		{name: "exactly one day still increments", state: State{Streak: 3, LastActiveAt: t0}, after: 24 * time.Hour, want: 4},
		{name: "25h gap resets", state: State{Streak: 3, LastActiveAt: t0}, after: 25 * time.Hour, want: 1, wantReset: true},
		{name: "first update after registration", state: State{Streak: 0, LastActiveAt: t0}, after: time.Hour, want: 1},
		{name: "reaching 7 earns bonus", state: State{Streak: 6, LastActiveAt: t0}, after: 20 * time.Hour, want: 7, wantBonus: true},
		{name: "reaching 14 earns bonus", state: State{Streak: 13, LastActiveAt: t0}, after: 20 * time.Hour, want: 14, wantBonus: true},
		{name: "reaching 8 earns nothing", state: State{Streak: 7, LastActiveAt: t0}, after: 20 * time.Hour, want: 8},
		{name: "reset from 6 earns nothing", state: State{Streak: 6, LastActiveAt: t0}, after: 48 * time.Hour, want: 1, wantReset: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := t0.Add(tt.after)
			tr := Advance(tt.state, now, Policy{})

			assert.Equal(t, tt.state.Streak, tr.Previous)
			assert.Equal(t, tt.want, tr.Current)
			assert.Equal(t, tt.wantReset, tr.Reset)
			assert.Equal(t, tt.wantBonus, tr.BonusEarned)
			assert.False(t, tr.Throttled)
			assert.Equal(t, now, tr.LastActiveAt)
		})
	}
}

func TestAdvance_RapidCallsCountEachTime(t *testing.T) {
	s := State{Streak: 2, LastActiveAt: t0}

	first := Advance(s, t0.Add(time.Second), Policy{})
	second := Advance(State{Streak: first.Current, LastActiveAt: first.LastActiveAt}, t0.Add(2*time.Second), Policy{})

	assert.Equal(t, uint32(3), first.Current)
	assert.Equal(t, uint32(4), second.Current)
}

func TestAdvance_MinIntervalThrottles(t *testing.T) {
	p := Policy{MinInterval: 20 * time.Hour}
	s := State{Streak: 2, LastActiveAt: t0}

	tr := Advance(s, t0.Add(time.Hour), p)
	assert.True(t, tr.Throttled)
	assert.Equal(t, uint32(2), tr.Current)
	assert.Equal(t, t0, tr.LastActiveAt)

	tr = Advance(s, t0.Add(21*time.Hour), p)
	assert.False(t, tr.Throttled)
	assert.Equal(t, uint32(3), tr.Current)
}

func TestIsMilestone(t *testing.T) {
	for _, n := range []uint32{7, 14, 21, 70} {
		assert.True(t, IsMilestone(n), n)
	}
	for _, n := range []uint32{0, 1, 6, 8, 13, 15} {
		assert.False(t, IsMilestone(n), n)
	}
}

func TestAchievementName(t *testing.T) {
	assert.Equal(t, "7-day study streak", AchievementName(7))
}
