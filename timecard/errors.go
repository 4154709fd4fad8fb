/*
errors.go - Centralized error types for the timecard domain

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Operations return these as typed results; nothing in this package panics
  on a business-rule violation.

ERROR CATEGORIES:
  1. Lookup errors     - Unknown timecard, line, or field
  2. Lifecycle errors  - Operation forbidden by current status or actor
  3. Content errors    - Empty timecard, malformed field values
  4. Store errors      - Optimistic concurrency conflicts

USAGE:
  Callers classify with errors.Is():

    if errors.Is(err, timecard.ErrInvalidState) {
        // map to 409
    }

SEE ALSO:
  - timecard.go: Guards that produce lifecycle errors
  - field.go: Codec that produces validation errors
  - api/handlers.go: Error-to-status mapping
*/
package timecard

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a timecard, a line, or a patchable field
	// cannot be located. Ownership mismatch on line replace also reports
	// not-found rather than leaking the existence of the line.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when the current status forbids an
	// operation, or when an actor/ownership rule is violated.
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyTimecard is returned when submitting a timecard with no lines.
	ErrEmptyTimecard = errors.New("empty timecard")

	// ErrMissingTransition is returned when querying a transition kind that
	// does not match the timecard's current status.
	ErrMissingTransition = errors.New("missing transition")

	// ErrValidation is returned when a raw field value cannot be parsed into
	// the field's type.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when optimistic locking detects that the stored
	// aggregate advanced since it was loaded.
	ErrConflict = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidStateError reports which operation was rejected and the status the
// timecard was in at the time.
type InvalidStateError struct {
	Operation string
	Status    Status
	Reason    string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not allowed: %s (status %s)", e.Operation, e.Reason, e.Status)
	}
	return fmt.Sprintf("%s not allowed in status %s", e.Operation, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// FieldError reports a field value the codec could not parse.
type FieldError struct {
	Field string
	Value string
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q: %v", e.Value, e.Field, e.Cause)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// MissingTransitionError reports a transition query that the current status
// does not support.
type MissingTransitionError struct {
	Requested Status
	Current   Status
}

func (e *MissingTransitionError) Error() string {
	return fmt.Sprintf("no %s transition available while status is %s", e.Requested, e.Current)
}

func (e *MissingTransitionError) Unwrap() error { return ErrMissingTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error indicates a state or concurrency
// conflict that should surface as 409 at the boundary.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrEmptyTimecard) ||
		errors.Is(err, ErrMissingTransition) ||
		errors.Is(err, ErrConflict)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
