// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"sort"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Identity
// ═══════════════════════════════════════════════════════════════════════════

// Identity is the opaque caller identity supplied by the host.
type Identity string

// String returns the string representation.
func (i Identity) String() string {
	return string(i)
}

// IsEmpty checks if the identity is empty.
func (i Identity) IsEmpty() bool {
	return strings.TrimSpace(string(i)) == ""
}

// NewIdentity creates a new Identity with validation.
func NewIdentity(raw string) (Identity, error) {
	id := Identity(strings.TrimSpace(raw))
	if id.IsEmpty() {
		return "", ErrInvalidIdentity
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Skill Level
// ═══════════════════════════════════════════════════════════════════════════

// SkillLevel is the closed set of proficiency levels.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// skillLevels is ordered; Index relies on it.
var skillLevels = []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced}

// ParseSkillLevel validates raw input at the boundary. Matching is exact:
// "Beginner" is rejected.
func ParseSkillLevel(raw string) (SkillLevel, error) {
	level := SkillLevel(raw)
	if !level.IsValid() {
		return "", ErrInvalidSkillLevel
	}
	return level, nil
}

// IsValid checks membership in the closed set.
func (s SkillLevel) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position in [beginner, intermediate, advanced], or -1.
func (s SkillLevel) Index() int {
	for i, l := range skillLevels {
		if l == s {
			return i
		}
	}
	return -1
}

// NoDistance is the Distance of a pair that includes an invalid level.
const NoDistance = -1

// Distance returns the absolute index distance between two levels, or
// NoDistance when either is invalid.
func (s SkillLevel) Distance(other SkillLevel) int {
	if !s.IsValid() || !other.IsValid() {
		return NoDistance
	}
	d := s.Index() - other.Index()
	if d < 0 {
		return -d
	}
	return d
}

// String returns the string representation.
func (s SkillLevel) String() string {
	return string(s)
}

// AllSkillLevels returns the levels in order.
func AllSkillLevels() []SkillLevel {
	out := make([]SkillLevel, len(skillLevels))
	copy(out, skillLevels)
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Resource Type
// ═══════════════════════════════════════════════════════════════════════════

// ResourceType is the closed set of uploadable material kinds.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceVideo    ResourceType = "video"
	ResourceLink     ResourceType = "link"
	ResourceQuiz     ResourceType = "quiz"
)

var resourceTypes = []ResourceType{ResourceDocument, ResourceVideo, ResourceLink, ResourceQuiz}

// ParseResourceType validates raw input at the boundary. Matching is exact.
func ParseResourceType(raw string) (ResourceType, error) {
	t := ResourceType(raw)
	if !t.IsValid() {
		return "", ErrInvalidResourceType
	}
	return t, nil
}

// IsValid checks membership in the closed set.
func (t ResourceType) IsValid() bool {
	for _, rt := range resourceTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t ResourceType) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// String Set
// ═══════════════════════════════════════════════════════════════════════════

// StringSet is an insertion-ordered set of strings. It serializes as a JSON
// array so records stay readable in the store.
type StringSet []string

// NewStringSet builds a set from values, dropping blanks and duplicates while
// keeping first-seen order.
func NewStringSet(values ...string) StringSet {
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out, _ = out.Add(v)
	}
	return out
}

// Contains reports membership.
func (s StringSet) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Add returns the set with v appended and whether it was newly added.
func (s StringSet) Add(v string) (StringSet, bool) {
	if s.Contains(v) {
		return s, false
	}
	return append(s, v), true
}

// Len returns the number of elements.
func (s StringSet) Len() int {
	return len(s)
}

// MarshalJSON renders a nil set as an empty array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Sorted returns a sorted copy.
func (s StringSet) Sorted() []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}
