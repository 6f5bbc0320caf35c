// Package errs defines the error taxonomy shared by the catalog, progress and
// session packages. Every concrete error matches one of the sentinels below
// through errors.Is and can be unpacked with errors.As.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrIncompleteSession = errors.New("incomplete session")
	ErrInvariant         = errors.New("invariant violation")
	ErrValidation        = errors.New("validation failed")
	ErrGoalLocked        = errors.New("goal locked")
)

// NotFoundError reports a child, category or goal id that does not exist.
type NotFoundError struct {
	Kind string // "child", "category" or "goal"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound is shorthand for a *NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidReferenceError reports a goal that does not belong to the stated category.
type InvalidReferenceError struct {
	CategoryID string
	GoalID     string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("goal %q does not belong to category %q", e.GoalID, e.CategoryID)
}

func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// IncompleteSessionError reports a session that cannot be submitted yet.
type IncompleteSessionError struct {
	Reason string
}

func (e *IncompleteSessionError) Error() string {
	return "incomplete session: " + e.Reason
}

func (e *IncompleteSessionError) Is(target error) bool { return target == ErrIncompleteSession }

// InvariantViolationError is a programming error. The mutation that
// produced it is refused.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Detail
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariant }

// ValidationError reports a required input field that is blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GoalLockedError reports a session aimed at a goal the child has not
// reached yet.
type GoalLockedError struct {
	ChildID    string
	CategoryID string
	GoalID     string
}

func (e *GoalLockedError) Error() string {
	return fmt.Sprintf("goal %s %s is locked for child %q", e.CategoryID, e.GoalID, e.ChildID)
}

func (e *GoalLockedError) Is(target error) bool { return target == ErrGoalLocked }
