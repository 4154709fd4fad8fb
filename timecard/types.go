/*
Package timecard implements the timecard aggregate: a worker's periodic
time-entry document that moves through a small lifecycle while accumulating
line-level time entries.

KEY CONCEPTS IN THIS FILE (types.go):
  - Timecard: The aggregate root (owner, lines, transition history)
  - Line: One time-entry record within a timecard
  - Transition: An immutable, timestamped record of a status change
  - Status: Derived from the transition ledger, never stored separately

DESIGN PRINCIPLES:
  1. Immutability: Transitions are never modified or removed
  2. Precision: Hours use decimal.Decimal to avoid floating-point errors
  3. Derived state: Status is a pure function of the ledger (no drift)
  4. Auditability: Every status change records who and when

SEE ALSO:
  - timecard.go: Lifecycle operations and guards
  - lines.go: Line ledger
  - transitions.go: Transition ledger
  - field.go: Field codec for single-field patches
*/
package timecard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID identifies a timecard.
type ID = uuid.UUID

// Actor identifies whoever performs an operation. The owner of a timecard is
// the Actor it was created for; approvers and rejectors are other Actors.
// Identity is passed in by the caller, never derived from a session.
type Actor string

// =============================================================================
// STATUS - Lifecycle states
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
	StatusApproved  Status = "approved"
)

// Terminal reports whether no further lifecycle operation can move the
// timecard out of this status.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// =============================================================================
// TRANSITION - One immutable status change
// =============================================================================

type TransitionKind string

const (
	KindEntered      TransitionKind = "entered"
	KindSubmittal    TransitionKind = "submittal"
	KindCancellation TransitionKind = "cancellation"
	KindRejection    TransitionKind = "rejection"
	KindApproval     TransitionKind = "approval"
)

// StatusFor returns the status a transition of this kind moves the
// timecard into.
func (k TransitionKind) StatusFor() Status {
	switch k {
	case KindEntered:
		return StatusDraft
	case KindSubmittal:
		return StatusSubmitted
	case KindCancellation:
		return StatusCancelled
	case KindRejection:
		return StatusRejected
	case KindApproval:
		return StatusApproved
	}
	return ""
}

// Transition records a single status change: what kind, who triggered it,
// when, and the status it moved the timecard into.
type Transition struct {
	Kind           TransitionKind
	Actor          Actor
	Resource       Actor // the worker the transition concerns (owner identity)
	OccurredAt     time.Time
	TransitionedTo Status
}

// =============================================================================
// LINE - One time-entry record
// =============================================================================

// Line is a single time entry within a timecard.
//
// Week, Year and Day are derived from WorkDate when the line is annotated at
// add/replace time; RecordIdentity and RecordVersion are opaque values from
// an external system of record.
type Line struct {
	UniqueIdentifier uuid.UUID
	Resource         Actor // submitting worker, checked against Timecard.Owner on replace
	WorkDate         time.Time
	Recorded         time.Time
	Project          string
	Hours            decimal.Decimal
	LineNumber       decimal.Decimal
	RecordIdentity   int
	RecordVersion    int
	Version          string
	Week             int
	Year             int
	Day              time.Weekday
}

// =============================================================================
// TIMECARD - Aggregate root
// =============================================================================

// Timecard is the aggregate root. It exclusively owns its Lines and
// Transitions; repositories hand out deep copies so an in-flight mutation is
// never observable.
//
// Revision is the optimistic-concurrency stamp: Repository.Update rejects a
// write whose Revision is not the one currently stored.
type Timecard struct {
	ID          ID
	Owner       Actor
	Opened      time.Time
	Lines       LineLedger
	Transitions TransitionLedger
	Revision    int64
}

// Status derives the current lifecycle state from the transition ledger.
// Invariant: after New() the ledger is never empty, so this is total.
func (t *Timecard) Status() Status {
	latest, ok := t.Transitions.Latest()
	if !ok {
		return StatusDraft
	}
	return latest.TransitionedTo
}

// Clone returns a deep copy of the timecard. Lines and transitions are value
// types, so copying the backing slices is sufficient.
func (t *Timecard) Clone() *Timecard {
	c := *t
	c.Lines = append(LineLedger(nil), t.Lines...)
	c.Transitions = append(TransitionLedger(nil), t.Transitions...)
	return &c
}
