// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are published after the unit of work commits.
const (
	// User events
	EventUserRegistered EventType = "user.registered"
	EventProfileUpdated EventType = "user.profile_updated"
	EventStreakUpdated  EventType = "user.streak_updated"

	// Group events
	EventGroupCreated EventType = "group.created"
	EventMemberJoined EventType = "group.member_joined"

	// Session events
	EventSessionCreated   EventType = "session.created"
	EventSessionJoined    EventType = "session.participant_joined"
	EventSessionCompleted EventType = "session.completed"

	// Resource events
	EventResourceUploaded   EventType = "resource.uploaded"
	EventResourceDownloaded EventType = "resource.downloaded"

	// Ledger events
	EventTokensCredited    EventType = "ledger.credited"
	EventTokensTransferred EventType = "ledger.transferred"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// User Events
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new identity registers.
type UserRegisteredEvent struct {
	BaseEvent
	Username   string `json:"username"`
	SkillLevel string `json:"skill_level"`
	Grant      uint64 `json:"grant"`
}

// Payload implements Event interface.
func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":    e.Username,
		"skill_level": e.SkillLevel,
		"grant":       e.Grant,
	}
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent.
func NewUserRegisteredEvent(id Identity, username string, level SkillLevel, grant uint64, at time.Time) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent:  NewBaseEvent(EventUserRegistered, id.String(), at),
		Username:   username,
		SkillLevel: level.String(),
		Grant:      grant,
	}
}

// ProfileUpdatedEvent is emitted after a profile edit.
type ProfileUpdatedEvent struct {
	BaseEvent
	Username   string `json:"username"`
	SkillLevel string `json:"skill_level"`
	Subjects   int    `json:"subjects"`
}

// Payload implements Event interface.
func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":    e.Username,
		"skill_level": e.SkillLevel,
		"subjects":    e.Subjects,
	}
}

// NewProfileUpdatedEvent creates a new ProfileUpdatedEvent.
func NewProfileUpdatedEvent(id Identity, username string, level SkillLevel, subjects int, at time.Time) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{
		BaseEvent:  NewBaseEvent(EventProfileUpdated, id.String(), at),
		Username:   username,
		SkillLevel: level.String(),
		Subjects:   subjects,
	}
}

// StreakUpdatedEvent is emitted on every streak transition.
type StreakUpdatedEvent struct {
	BaseEvent
	Previous    uint32 `json:"previous"`
	Current     uint32 `json:"current"`
	Reset       bool   `json:"reset"`
	BonusEarned uint64 `json:"bonus_earned"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"previous":     e.Previous,
		"current":      e.Current,
		"reset":        e.Reset,
		"bonus_earned": e.BonusEarned,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(id Identity, previous, current uint32, reset bool, bonus uint64, at time.Time) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent:   NewBaseEvent(EventStreakUpdated, id.String(), at),
		Previous:    previous,
		Current:     current,
		Reset:       reset,
		BonusEarned: bonus,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Group Events
// ═══════════════════════════════════════════════════════════════════════════

// GroupCreatedEvent is emitted when a study group is created.
type GroupCreatedEvent struct {
	BaseEvent
	Creator    string `json:"creator"`
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	MaxMembers uint32 `json:"max_members"`
}

// Payload implements Event interface.
func (e GroupCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"creator":     e.Creator,
		"name":        e.Name,
		"subject":     e.Subject,
		"max_members": e.MaxMembers,
	}
}

// NewGroupCreatedEvent creates a new GroupCreatedEvent.
func NewGroupCreatedEvent(groupID string, creator Identity, name, subject string, maxMembers uint32, at time.Time) GroupCreatedEvent {
	return GroupCreatedEvent{
		BaseEvent:  NewBaseEvent(EventGroupCreated, groupID, at),
		Creator:    creator.String(),
		Name:       name,
		Subject:    subject,
		MaxMembers: maxMembers,
	}
}

// MemberJoinedEvent is emitted when a user joins a group.
type MemberJoinedEvent struct {
	BaseEvent
	Member         string `json:"member"`
	CurrentMembers int    `json:"current_members"`
}

// Payload implements Event interface.
func (e MemberJoinedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member":          e.Member,
		"current_members": e.CurrentMembers,
	}
}

// NewMemberJoinedEvent creates a new MemberJoinedEvent.
func NewMemberJoinedEvent(groupID string, member Identity, currentMembers int, at time.Time) MemberJoinedEvent {
	return MemberJoinedEvent{
		BaseEvent:      NewBaseEvent(EventMemberJoined, groupID, at),
		Member:         member.String(),
		CurrentMembers: currentMembers,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionEvent covers session creation, joining and completion.
type SessionEvent struct {
	BaseEvent
	GroupID      string `json:"group_id"`
	Actor        string `json:"actor"`
	Participants int    `json:"participants"`
}

// Payload implements Event interface.
func (e SessionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"group_id":     e.GroupID,
		"actor":        e.Actor,
		"participants": e.Participants,
	}
}

// NewSessionEvent creates a session lifecycle event of the given type.
func NewSessionEvent(eventType EventType, sessionID, groupID string, actor Identity, participants int, at time.Time) SessionEvent {
	return SessionEvent{
		BaseEvent:    NewBaseEvent(eventType, sessionID, at),
		GroupID:      groupID,
		Actor:        actor.String(),
		Participants: participants,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Resource Events
// ═══════════════════════════════════════════════════════════════════════════

// ResourceEvent covers uploads and downloads.
type ResourceEvent struct {
	BaseEvent
	Actor        string `json:"actor"`
	ResourceType string `json:"resource_type"`
	Downloads    uint64 `json:"downloads"`
}

// Payload implements Event interface.
func (e ResourceEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"actor":         e.Actor,
		"resource_type": e.ResourceType,
		"downloads":     e.Downloads,
	}
}

// NewResourceEvent creates a resource event of the given type.
func NewResourceEvent(eventType EventType, resourceID string, actor Identity, rt ResourceType, downloads uint64, at time.Time) ResourceEvent {
	return ResourceEvent{
		BaseEvent:    NewBaseEvent(eventType, resourceID, at),
		Actor:        actor.String(),
		ResourceType: rt.String(),
		Downloads:    downloads,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Ledger Events
// ═══════════════════════════════════════════════════════════════════════════

// TokensCreditedEvent is emitted for every reward credit.
type TokensCreditedEvent struct {
	BaseEvent
	Amount  uint64 `json:"amount"`
	Balance uint64 `json:"balance"`
	Reason  string `json:"reason"`
}

// Payload implements Event interface.
func (e TokensCreditedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"amount":  e.Amount,
		"balance": e.Balance,
		"reason":  e.Reason,
	}
}

// NewTokensCreditedEvent creates a new TokensCreditedEvent.
func NewTokensCreditedEvent(id Identity, amount, balance uint64, reason string, at time.Time) TokensCreditedEvent {
	return TokensCreditedEvent{
		BaseEvent: NewBaseEvent(EventTokensCredited, id.String(), at),
		Amount:    amount,
		Balance:   balance,
		Reason:    reason,
	}
}

// TokensTransferredEvent is emitted after a peer transfer commits.
type TokensTransferredEvent struct {
	BaseEvent
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// Payload implements Event interface.
func (e TokensTransferredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"to":     e.To,
		"amount": e.Amount,
	}
}

// NewTokensTransferredEvent creates a new TokensTransferredEvent.
func NewTokensTransferredEvent(from, to Identity, amount uint64, at time.Time) TokensTransferredEvent {
	return TokensTransferredEvent{
		BaseEvent: NewBaseEvent(EventTokensTransferred, from.String(), at),
		To:        to.String(),
		Amount:    amount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
