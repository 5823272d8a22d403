// Package user contains the UserProfile aggregate.
package user

import (
	"strings"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER PROFILE AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Profile is a registered participant keyed by caller identity.
// The token balance lives in the ledger and is not part of the record.
type Profile struct {
	ID           shared.Identity   `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Subjects     shared.StringSet  `json:"subjects"`
	SkillLevel   shared.SkillLevel `json:"skill_level"`
	StudyStreak  uint32            `json:"study_streak"`
	Achievements []string          `json:"achievements"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
}

// NewProfileParams holds registration input after boundary parsing.
type NewProfileParams struct {
	ID         shared.Identity
	Username   string
	Email      string
	Subjects   []string
	SkillLevel shared.SkillLevel
	Now        time.Time
}

// NewProfile validates input and builds a fresh profile with streak 0.
func NewProfile(p NewProfileParams) (*Profile, error) {
	if p.ID.IsEmpty() {
		return nil, shared.ErrInvalidIdentity
	}
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, shared.ErrInvalidUsername
	}
	if !p.SkillLevel.IsValid() {
		return nil, shared.ErrInvalidSkillLevel
	}

	return &Profile{
		ID:           p.ID,
		Username:     username,
		Email:        strings.TrimSpace(p.Email),
		Subjects:     shared.NewStringSet(p.Subjects...),
		SkillLevel:   p.SkillLevel,
		StudyStreak:  0,
		Achievements: []string{},
		CreatedAt:    p.Now,
		LastActiveAt: p.Now,
	}, nil
}

// UpdateParams carries a profile edit.
type UpdateParams struct {
	Username   string
	Subjects   []string
	SkillLevel shared.SkillLevel
	Now        time.Time
}

// Update applies an edit and touches LastActiveAt.
func (p *Profile) Update(u UpdateParams) error {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return shared.ErrInvalidUsername
	}
	if !u.SkillLevel.IsValid() {
		return shared.ErrInvalidSkillLevel
	}
	p.Username = username
	p.Subjects = shared.NewStringSet(u.Subjects...)
	p.SkillLevel = u.SkillLevel
	p.LastActiveAt = u.Now
	return nil
}

// HasSubject reports whether the user studies subject.
func (p *Profile) HasSubject(subject string) bool {
	return p.Subjects.Contains(subject)
}

// AddAchievement appends an achievement once. Returns false if already held.
func (p *Profile) AddAchievement(name string) bool {
	for _, a := range p.Achievements {
		if a == name {
			return false
		}
	}
	p.Achievements = append(p.Achievements, name)
	return true
}
