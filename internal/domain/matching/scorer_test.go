package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T, id string, level shared.SkillLevel, subjects ...string) *user.Profile {
	t.Helper()
	u, err := user.NewProfile(user.NewProfileParams{
		ID: shared.Identity(id), Username: id, SkillLevel: level, Subjects: subjects, Now: now,
	})
	require.NoError(t, err)
	return u
}

func newGroup(t *testing.T, id, subject string, level shared.SkillLevel, maxMembers uint32, members ...string) *group.StudyGroup {
	t.Helper()
	g, err := group.NewStudyGroup(group.NewGroupParams{
		ID: id, Name: id, Subject: subject, SkillLevel: level, MaxMembers: maxMembers,
		Creator: "creator", Now: now,
	})
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, g.Join(shared.Identity(m)))
	}
	return g
}

func session(groupID string, at time.Time) *group.Session {
	return &group.Session{ID: "s-" + groupID, GroupID: groupID, ScheduledAt: at}
}

func TestScore_FullMarks(t *testing.T) {
	u := newUser(t, "u", shared.SkillIntermediate, "Math")
	g := newGroup(t, "g1", "Math", shared.SkillIntermediate, 10, "m1", "m2")

	score, reasons := Score(u, Candidate{Group: g, Sessions: []*group.Session{session("g1", now.Add(-24*time.Hour))}}, now)

	assert.Equal(t, 100, score)
	assert.Equal(t, []string{
		"Same subject: Math",
		"Same skill level: intermediate",
		"Active group with recent sessions",
		"Well-established group",
	}, reasons)
}

func TestScore_AdjacentLevels(t *testing.T) {
	u := newUser(t, "u", shared.SkillBeginner, "Math")
	g := newGroup(t, "g1", "Math", shared.SkillIntermediate, 10)

	score, reasons := Score(u, Candidate{Group: g}, now)

	assert.Equal(t, 55, score)
	assert.Equal(t, []string{"Same subject: Math", "Compatible skill levels: beginner and intermediate"}, reasons)
}

func TestScore_DistantLevelsAndStaleSessions(t *testing.T) {
	u := newUser(t, "u", shared.SkillBeginner, "Math")
	g := newGroup(t, "g1", "Math", shared.SkillAdvanced, 10)

	score, _ := Score(u, Candidate{Group: g, Sessions: []*group.Session{session("g1", now.Add(-8*24*time.Hour))}}, now)
	assert.Equal(t, 40, score)
}

func TestScore_UnknownStoredLevelEarnsNoSkillPoints(t *testing.T) {
	u := newUser(t, "u", shared.SkillBeginner, "Math")
	u.SkillLevel = "expert"
	g := newGroup(t, "g1", "Math", shared.SkillBeginner, 10)

	score, reasons := Score(u, Candidate{Group: g}, now)
	assert.Equal(t, 40, score)
	assert.Equal(t, []string{"Same subject: Math"}, reasons)
}

func TestScore_Bounds(t *testing.T) {
	levels := shared.AllSkillLevels()
	for _, ul := range levels {
		for _, gl := range levels {
			u := newUser(t, "u", ul, "Math", "Physics")
			g := newGroup(t, "g", "Math", gl, 10, "a", "b", "c")
			score, reasons := Score(u, Candidate{Group: g, Sessions: []*group.Session{session("g", now)}}, now)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, MaxScore)
			assert.NotEmpty(t, reasons)
		}
	}
}

func TestFindMatches_ThresholdAndEligibility(t *testing.T) {
	u := newUser(t, "u", shared.SkillIntermediate, "Math")

	below := newGroup(t, "below", "Art", shared.SkillIntermediate, 10, "a", "b")
	full := newGroup(t, "full", "Math", shared.SkillIntermediate, 2, "a")
	member := newGroup(t, "member", "Math", shared.SkillIntermediate, 10, "u")
	inactive := newGroup(t, "inactive", "Math", shared.SkillIntermediate, 10)
	inactive.IsActive = false
	ok := newGroup(t, "ok", "Math", shared.SkillAdvanced, 10)

	matches := FindMatches(u, []Candidate{{Group: below}, {Group: full}, {Group: member}, {Group: inactive}, {Group: ok}}, now)

	require.Len(t, matches, 1)
	assert.Equal(t, "ok", matches[0].GroupID)
	assert.Equal(t, 55, matches[0].CompatibilityScore)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.CompatibilityScore, Threshold)
	}
}

func TestFindMatches_StableDescendingOrder(t *testing.T) {
	u := newUser(t, "u", shared.SkillIntermediate, "Math")

	a := newGroup(t, "a", "Math", shared.SkillBeginner, 10)
	b := newGroup(t, "b", "Math", shared.SkillIntermediate, 10)
	c := newGroup(t, "c", "Math", shared.SkillAdvanced, 10)
	d := newGroup(t, "d", "Math", shared.SkillIntermediate, 10)

	matches := FindMatches(u, []Candidate{{Group: a}, {Group: b}, {Group: c}, {Group: d}}, now)

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.GroupID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestFindMatches_NilUser(t *testing.T) {
	g := newGroup(t, "g", "Math", shared.SkillIntermediate, 10)
	assert.Empty(t, FindMatches(nil, []Candidate{{Group: g}}, now))
}

func TestCandidatesFrom(t *testing.T) {
	g1 := newGroup(t, "g1", "Math", shared.SkillIntermediate, 10)
	g2 := newGroup(t, "g2", "Math", shared.SkillIntermediate, 10)
	s := session("g2", now)

	cs := CandidatesFrom([]*group.StudyGroup{g1, g2}, []*group.Session{s})

	require.Len(t, cs, 2)
	assert.Empty(t, cs[0].Sessions)
	assert.Equal(t, []*group.Session{s}, cs[1].Sessions)
}
