/*
errors.go - Centralized error taxonomy for the lifecycle engine

PURPOSE:
  Every precondition failure maps to exactly one taxonomy member and
  short-circuits further checks. Errors are returned as typed values,
  never as panics, and no observable state mutation happens unless an
  operation fully succeeds.

ERROR CATEGORIES:
  1. NotFound        - unknown employee/leave-type/record, or an actor not
                       authorized for the record. Missing and unauthorized
                       are deliberately indistinguishable so callers cannot
                       probe for the existence of other people's records.
  2. InvalidInput    - malformed calendar date
  3. InvalidDuration - end date before start date
  4. InsufficientNotice / InsufficientBalance / Conflict - policy and
     accounting rule violations

USAGE:
  Structured error types carry context and Unwrap() to the sentinel:

    if errors.Is(err, leave.ErrConflict) { ... }

    var nf *leave.NotFoundError
    if errors.As(err, &nf) { ... }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound covers unknown employees, leave types, and records, and
	// also actors that are not authorized for a record. The conflation is
	// intentional: a caller must not learn whether a record exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for a malformed calendar date.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDuration is returned when the end date is before the start.
	ErrInvalidDuration = errors.New("invalid leave duration")

	// ErrInsufficientNotice is returned when the request starts sooner than
	// the leave type's minimum notice allows.
	ErrInsufficientNotice = errors.New("insufficient notice")

	// ErrInsufficientBalance is returned when the requested duration exceeds
	// the remaining balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict is returned when an active request already covers part of
	// the requested range.
	ErrConflict = errors.New("conflicting leave request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports a missing (or inaccessible) entity.
type NotFoundError struct {
	Kind string // "employee", "leave type", "leave record"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidDateError reports a date that failed to parse.
type InvalidDateError struct {
	Field string // "start" or "end"
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s date %q", e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidInput }

// InvalidDurationError reports an end date before the start date.
type InvalidDurationError struct {
	Start Date
	End   Date
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration: %s ends before it starts (%s)", e.End, e.Start)
}

func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// InsufficientNoticeError reports a request submitted too close to its start.
type InsufficientNoticeError struct {
	Type     LeaveType
	Required int // policy minimum notice in days
	Given    int // days between submission and start
}

func (e *InsufficientNoticeError) Error() string {
	return fmt.Sprintf("minimum %d days notice required for %s leave (got %d)",
		e.Required, e.Type, e.Given)
}

func (e *InsufficientNoticeError) Unwrap() error { return ErrInsufficientNotice }

// InsufficientBalanceError reports a balance shortage.
type InsufficientBalanceError struct {
	Type      LeaveType
	Available Days
	Requested Days
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("not enough %s leave: available %s days, requested %s",
		e.Type, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// ConflictError reports an overlap with an existing active request.
type ConflictError struct {
	Existing RecordID
	Start    Date
	End      Date
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting leave request %d covers %s..%s",
		e.Existing, e.Start, e.End)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing or inaccessible entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err is a rejected precondition rather than
// an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInsufficientNotice) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrConflict)
}
