/*
timecard.go - The timecard aggregate and its lifecycle state machine

PURPOSE:
  Composes the line ledger and transition ledger behind the lifecycle state
  machine and enforces every cross-cutting guard: status checks, ownership
  checks, emptiness checks.

STATE MACHINE:
  Draft -> Submitted -> {Approved, Rejected}
  {Draft, Submitted} -> Cancelled
  Approved, Rejected, Cancelled are terminal.

SEGREGATION OF DUTIES:
  The guards are deliberately asymmetric and must stay that way:
  - Submit requires actor == owner (you submit your own timecard)
  - Approve/Reject require actor != owner (you cannot sign off on your own)
  - Cancel requires actor == owner only from Draft; anyone may cancel a
    Submitted timecard.

SEE ALSO:
  - lines.go, transitions.go: The two ledgers
  - service.go: Load/mutate/persist cycle around these operations
*/
package timecard

import (
	"time"

	"github.com/google/uuid"
)

// New creates a timecard for the given owner. Creation appends the initial
// Entered transition, so the ledger is never empty and Status() starts at
// Draft.
func New(owner Actor, now time.Time) *Timecard {
	t := &Timecard{
		ID:     uuid.New(),
		Owner:  owner,
		Opened: now,
	}
	t.Transitions.Append(KindEntered, owner, owner, now)
	return t
}

// Deletable reports whether the whole timecard may be removed.
// Only Draft and Cancelled timecards can be deleted.
func (t *Timecard) Deletable() bool {
	s := t.Status()
	return s == StatusDraft || s == StatusCancelled
}

// =============================================================================
// LINE OPERATIONS - Only while Draft
// =============================================================================

// AddLine appends a line while the timecard is a draft. Returns the
// annotated line as stored.
func (t *Timecard) AddLine(line Line, now time.Time) (Line, error) {
	if s := t.Status(); s != StatusDraft {
		return Line{}, &InvalidStateError{Operation: "add line", Status: s}
	}
	return t.Lines.Add(line, now), nil
}

// ReplaceLine replaces the line identified by unique with a new line,
// keeping its ordinal position. The replacement must carry the timecard
// owner's identity; a mismatch reports not-found rather than revealing
// whether the line exists.
func (t *Timecard) ReplaceLine(unique uuid.UUID, line Line, now time.Time) (Line, error) {
	if line.Resource != t.Owner {
		return Line{}, ErrNotFound
	}
	if s := t.Status(); s != StatusDraft {
		return Line{}, &InvalidStateError{Operation: "replace line", Status: s}
	}
	return t.Lines.ReplaceAt(unique, line, now)
}

// PatchLineField parses raw via the field codec and mutates one field of the
// line identified by unique. Unknown lines and unknown fields report
// ErrNotFound; malformed values report a FieldError.
func (t *Timecard) PatchLineField(unique uuid.UUID, field, raw string) error {
	if s := t.Status(); s != StatusDraft {
		return &InvalidStateError{Operation: "patch line", Status: s}
	}
	line, ok := t.Lines.ByID(unique)
	if !ok {
		return ErrNotFound
	}
	return SetField(line, field, raw)
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Submit moves a draft to Submitted. The timecard must have at least one
// line, and only the owner may submit.
func (t *Timecard) Submit(actor Actor, now time.Time) (Transition, error) {
	if s := t.Status(); s != StatusDraft {
		return Transition{}, &InvalidStateError{Operation: "submit", Status: s}
	}
	if len(t.Lines) == 0 {
		return Transition{}, ErrEmptyTimecard
	}
	if actor != t.Owner {
		return Transition{}, &InvalidStateError{
			Operation: "submit", Status: t.Status(), Reason: "only the owner may submit",
		}
	}
	return t.Transitions.Append(KindSubmittal, actor, t.Owner, now), nil
}

// Cancel moves a Draft or Submitted timecard to Cancelled. From Draft only
// the owner may cancel; from Submitted anyone may (e.g. a manager pulling a
// submitted card back).
func (t *Timecard) Cancel(actor Actor, now time.Time) (Transition, error) {
	s := t.Status()
	if s != StatusDraft && s != StatusSubmitted {
		return Transition{}, &InvalidStateError{Operation: "cancel", Status: s}
	}
	if s == StatusDraft && actor != t.Owner {
		return Transition{}, &InvalidStateError{
			Operation: "cancel", Status: s, Reason: "only the owner may cancel a draft",
		}
	}
	return t.Transitions.Append(KindCancellation, actor, t.Owner, now), nil
}

// Reject moves a Submitted timecard to Rejected. Self-rejection is
// forbidden.
func (t *Timecard) Reject(actor Actor, now time.Time) (Transition, error) {
	if s := t.Status(); s != StatusSubmitted {
		return Transition{}, &InvalidStateError{Operation: "reject", Status: s}
	}
	if actor == t.Owner {
		return Transition{}, &InvalidStateError{
			Operation: "reject", Status: t.Status(), Reason: "owners cannot reject their own timecard",
		}
	}
	return t.Transitions.Append(KindRejection, actor, t.Owner, now), nil
}

// Approve moves a Submitted timecard to Approved. Self-approval is
// forbidden.
func (t *Timecard) Approve(actor Actor, now time.Time) (Transition, error) {
	if s := t.Status(); s != StatusSubmitted {
		return Transition{}, &InvalidStateError{Operation: "approve", Status: s}
	}
	if actor == t.Owner {
		return Transition{}, &InvalidStateError{
			Operation: "approve", Status: t.Status(), Reason: "owners cannot approve their own timecard",
		}
	}
	return t.Transitions.Append(KindApproval, actor, t.Owner, now), nil
}

// TransitionInto returns the most recent transition into the given status,
// but only while that status is current. Querying the submittal of an
// already-approved timecard reports ErrMissingTransition even though the
// history still contains it.
func (t *Timecard) TransitionInto(status Status) (Transition, error) {
	if current := t.Status(); current != status {
		return Transition{}, &MissingTransitionError{Requested: status, Current: current}
	}
	tr, ok := t.Transitions.LatestOfStatus(status)
	if !ok {
		return Transition{}, &MissingTransitionError{Requested: status, Current: t.Status()}
	}
	return tr, nil
}
