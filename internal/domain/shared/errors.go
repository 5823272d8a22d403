// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Membership errors
	ErrFull       = errors.New("capacity reached")
	ErrMembership = errors.New("already a member")

	// Economy errors
	ErrNoFunds = errors.New("insufficient funds")

	// Validation errors
	ErrInvalidEnum     = errors.New("invalid enum value")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrLockNotAcquired        = errors.New("lock not acquired")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "group", "ledger"
	Op      string // Operation that failed, e.g., "Join", "Transfer"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("user", "Register", ErrAlreadyExists, "user already registered")
	ErrInvalidIdentity   = NewDomainError("user", "Validate", ErrEmptyValue, "caller identity is required")
	ErrInvalidUsername   = NewDomainError("user", "Validate", ErrEmptyValue, "username is required")
	ErrInvalidSkillLevel = NewDomainError("user", "Validate", ErrInvalidEnum, "Invalid skill level. Must be: beginner, intermediate, or advanced")
)

// Group domain errors
var (
	ErrGroupNotFound    = NewDomainError("group", "Find", ErrNotFound, "Study group not found")
	ErrGroupFull        = NewDomainError("group", "Join", ErrFull, "Study group is full")
	ErrAlreadyMember    = NewDomainError("group", "Join", ErrMembership, "You are already a member of this group")
	ErrNotGroupMember   = NewDomainError("group", "CheckMembership", ErrForbidden, "You must be a member of this group")
	ErrInvalidGroupName = NewDomainError("group", "Validate", ErrEmptyValue, "group name is required")
	ErrInvalidCapacity  = NewDomainError("group", "Validate", ErrValueOutOfRange, "max members must be at least 1")
)

// Session domain errors
var (
	ErrSessionNotFound         = NewDomainError("session", "Find", ErrNotFound, "Study session not found")
	ErrAlreadyParticipant      = NewDomainError("session", "Join", ErrMembership, "You are already a participant in this session")
	ErrNotParticipant          = NewDomainError("session", "Complete", ErrForbidden, "Only participants can complete a session")
	ErrSessionAlreadyCompleted = NewDomainError("session", "Complete", ErrAlreadyProcessed, "Study session is already completed")
	ErrInvalidSessionTitle     = NewDomainError("session", "Validate", ErrEmptyValue, "session title is required")
)

// Resource domain errors
var (
	ErrResourceNotFound     = NewDomainError("resource", "Find", ErrNotFound, "Resource not found")
	ErrInvalidResourceType  = NewDomainError("resource", "Validate", ErrInvalidEnum, "Invalid resource type. Must be: document, video, link, or quiz")
	ErrInvalidResourceTitle = NewDomainError("resource", "Validate", ErrEmptyValue, "resource title is required")
)

// Ledger domain errors
var (
	ErrInsufficientFunds = NewDomainError("ledger", "Debit", ErrNoFunds, "Insufficient study tokens")
	ErrInvalidAmount     = NewDomainError("ledger", "Validate", ErrValueOutOfRange, "amount must be greater than zero")
	ErrBalanceOverflow   = NewDomainError("ledger", "Credit", ErrValueOutOfRange, "balance overflow")
	ErrSelfTransfer      = NewDomainError("ledger", "Transfer", ErrInvalidInput, "cannot transfer tokens to yourself")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict reports membership and duplicate failures.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrMembership) ||
		errors.Is(err, ErrFull) ||
		errors.Is(err, ErrAlreadyProcessed)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidEnum) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInsufficientFunds reports ledger debits that exceed the balance.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrNoFunds)
}

// IsForbidden reports authorization failures.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrLockNotAcquired)
}

// MessageOf returns the human-readable message of the outermost DomainError
// in the chain, or the error text itself.
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
