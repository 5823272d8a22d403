// Package group contains the StudyGroup aggregate and its study sessions.
package group

import (
	"strings"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY GROUP AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// IDPrefix prefixes generated group IDs.
const IDPrefix = "group_"

// StudyGroup is a capacity-bounded set of members around one subject.
// The member count is always len(Members).
type StudyGroup struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Subject       string            `json:"subject"`
	SkillLevel    shared.SkillLevel `json:"skill_level"`
	MaxMembers    uint32            `json:"max_members"`
	Members       shared.StringSet  `json:"members"`
	Creator       shared.Identity   `json:"creator"`
	Resources     shared.StringSet  `json:"resources"`
	StudySessions shared.StringSet  `json:"study_sessions"`
	CreatedAt     time.Time         `json:"created_at"`
	IsActive      bool              `json:"is_active"`
}

// NewGroupParams holds creation input after boundary parsing.
type NewGroupParams struct {
	ID          string
	Name        string
	Description string
	Subject     string
	SkillLevel  shared.SkillLevel
	MaxMembers  uint32
	Creator     shared.Identity
	Now         time.Time
}

// NewStudyGroup builds an active group whose only member is the creator.
func NewStudyGroup(p NewGroupParams) (*StudyGroup, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, shared.ErrInvalidGroupName
	}
	if !p.SkillLevel.IsValid() {
		return nil, shared.ErrInvalidSkillLevel
	}
	if p.MaxMembers < 1 {
		return nil, shared.ErrInvalidCapacity
	}

	return &StudyGroup{
		ID:            p.ID,
		Name:          name,
		Description:   strings.TrimSpace(p.Description),
		Subject:       strings.TrimSpace(p.Subject),
		SkillLevel:    p.SkillLevel,
		MaxMembers:    p.MaxMembers,
		Members:       shared.NewStringSet(p.Creator.String()),
		Creator:       p.Creator,
		Resources:     shared.StringSet{},
		StudySessions: shared.StringSet{},
		CreatedAt:     p.Now,
		IsActive:      true,
	}, nil
}

// CurrentMembers returns the member count.
func (g *StudyGroup) CurrentMembers() int {
	return g.Members.Len()
}

// IsFull reports whether capacity is reached.
func (g *StudyGroup) IsFull() bool {
	return uint32(g.CurrentMembers()) >= g.MaxMembers
}

// IsMember reports membership.
func (g *StudyGroup) IsMember(id shared.Identity) bool {
	return g.Members.Contains(id.String())
}

// Join adds id as a member. Capacity is checked before membership.
func (g *StudyGroup) Join(id shared.Identity) error {
	if g.IsFull() {
		return shared.ErrGroupFull
	}
	if g.IsMember(id) {
		return shared.ErrAlreadyMember
	}
	g.Members, _ = g.Members.Add(id.String())
	return nil
}

// AttachSession records a session ID.
func (g *StudyGroup) AttachSession(sessionID string) {
	g.StudySessions, _ = g.StudySessions.Add(sessionID)
}

// AttachResource records a resource ID.
func (g *StudyGroup) AttachResource(resourceID string) {
	g.Resources, _ = g.Resources.Add(resourceID)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY SESSION
// ══════════════════════════════════════════════════════════════════════════════

// SessionIDPrefix prefixes generated session IDs.
const SessionIDPrefix = "session_"

// Session is a scheduled meeting of group members.
type Session struct {
	ID           string           `json:"id"`
	GroupID      string           `json:"group_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ScheduledAt  time.Time        `json:"scheduled_at"`
	Duration     uint32           `json:"duration"` // minutes
	Participants shared.StringSet `json:"participants"`
	Resources    shared.StringSet `json:"resources"`
	Completed    bool             `json:"completed"`
	Notes        string           `json:"notes"`
}

// NewSessionParams holds session creation input.
type NewSessionParams struct {
	ID          string
	GroupID     string
	Title       string
	Description string
	ScheduledAt time.Time
	Duration    uint32
	Creator     shared.Identity
}

// NewSession builds a session whose first participant is the creator.
func NewSession(p NewSessionParams) (*Session, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, shared.ErrInvalidSessionTitle
	}
	return &Session{
		ID:           p.ID,
		GroupID:      p.GroupID,
		Title:        title,
		Description:  strings.TrimSpace(p.Description),
		ScheduledAt:  p.ScheduledAt,
		Duration:     p.Duration,
		Participants: shared.NewStringSet(p.Creator.String()),
		Resources:    shared.StringSet{},
	}, nil
}

// IsParticipant reports participation.
func (s *Session) IsParticipant(id shared.Identity) bool {
	return s.Participants.Contains(id.String())
}

// Join adds a participant.
func (s *Session) Join(id shared.Identity) error {
	if s.IsParticipant(id) {
		return shared.ErrAlreadyParticipant
	}
	s.Participants, _ = s.Participants.Add(id.String())
	return nil
}

// Complete marks the session done. Only participants may complete it, once.
func (s *Session) Complete(by shared.Identity, notes string) error {
	if !s.IsParticipant(by) {
		return shared.ErrNotParticipant
	}
	if s.Completed {
		return shared.ErrSessionAlreadyCompleted
	}
	s.Completed = true
	s.Notes = strings.TrimSpace(notes)
	return nil
}
