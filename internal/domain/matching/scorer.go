// Package matching scores how well study groups fit a user.
//
// Scoring is additive and pure:
//
//	+40 group subject is one of the user's subjects
//	+30 same skill level, or +15 when the levels are adjacent
//	+20 the group has a session scheduled within the trailing week
//	+10 the group has at least three members
//
// Only groups scoring at least Threshold are returned, highest first. Ties
// keep the order in which groups were supplied.
package matching

import (
	"fmt"
	"sort"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/user"
	"github.com/alem-hub/studyhub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	SubjectWeight         = 40
	SameLevelWeight       = 30
	AdjacentLevelWeight   = 15
	RecentActivityWeight  = 20
	EstablishedWeight     = 10
	EstablishedMinMembers = 3

	// Threshold is the minimum score worth recommending.
	Threshold = 50

	// MaxScore is the sum of the best-case weights.
	MaxScore = SubjectWeight + SameLevelWeight + RecentActivityWeight + EstablishedWeight
)

// RecentWindow bounds the recent-activity rule.
const RecentWindow = timeutil.Week

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Candidate is a group paired with its sessions.
type Candidate struct {
	Group    *group.StudyGroup
	Sessions []*group.Session
}

// Match is a scored recommendation. Never persisted.
type Match struct {
	UserID             string   `json:"user_id"`
	GroupID            string   `json:"group_id"`
	GroupName          string   `json:"group_name"`
	CompatibilityScore int      `json:"compatibility_score"`
	Reasons            []string `json:"reasons"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORER
// ══════════════════════════════════════════════════════════════════════════════

// IsEligible reports whether g can be recommended to u at all.
func IsEligible(u *user.Profile, g *group.StudyGroup) bool {
	return g.IsActive && !g.IsFull() && !g.IsMember(u.ID)
}

// Score computes the score and reasons of one candidate at now.
func Score(u *user.Profile, c Candidate, now time.Time) (int, []string) {
	g := c.Group
	score := 0
	reasons := make([]string, 0, 4)

	if u.HasSubject(g.Subject) {
		score += SubjectWeight
		reasons = append(reasons, fmt.Sprintf("Same subject: %s", g.Subject))
	}

	switch u.SkillLevel.Distance(g.SkillLevel) {
	case 0:
		score += SameLevelWeight
		reasons = append(reasons, fmt.Sprintf("Same skill level: %s", g.SkillLevel))
	case 1:
		score += AdjacentLevelWeight
		reasons = append(reasons, fmt.Sprintf("Compatible skill levels: %s and %s", u.SkillLevel, g.SkillLevel))
	}

	if hasRecentSession(c.Sessions, now) {
		score += RecentActivityWeight
		reasons = append(reasons, "Active group with recent sessions")
	}

	if g.CurrentMembers() >= EstablishedMinMembers {
		score += EstablishedWeight
		reasons = append(reasons, "Well-established group")
	}

	return score, reasons
}

// FindMatches scores every eligible candidate and returns those at or above
// Threshold, ordered by descending score.
func FindMatches(u *user.Profile, candidates []Candidate, now time.Time) []Match {
	matches := make([]Match, 0)
	if u == nil {
		return matches
	}

	for _, c := range candidates {
		if c.Group == nil || !IsEligible(u, c.Group) {
			continue
		}
		score, reasons := Score(u, c, now)
		if score < Threshold {
			continue
		}
		matches = append(matches, Match{
			UserID:             u.ID.String(),
			GroupID:            c.Group.ID,
			GroupName:          c.Group.Name,
			CompatibilityScore: score,
			Reasons:            reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CompatibilityScore > matches[j].CompatibilityScore
	})
	return matches
}

func hasRecentSession(sessions []*group.Session, now time.Time) bool {
	for _, s := range sessions {
		if timeutil.WithinTrailing(now, s.ScheduledAt, RecentWindow) {
			return true
		}
	}
	return false
}

// CandidatesFrom pairs groups with their sessions, keeping group order.
func CandidatesFrom(groups []*group.StudyGroup, sessions []*group.Session) []Candidate {
	byGroup := make(map[string][]*group.Session, len(groups))
	for _, s := range sessions {
		byGroup[s.GroupID] = append(byGroup[s.GroupID], s)
	}
	out := make([]Candidate, 0, len(groups))
	for _, g := range groups {
		out = append(out, Candidate{Group: g, Sessions: byGroup[g.ID]})
	}
	return out
}
