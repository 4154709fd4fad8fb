/*
transitions.go - Append-only ledger of status changes

PURPOSE:
  The transition ledger is the single source of truth for a timecard's
  current status and for its audit history.

APPEND-ONLY CONTRACT:
  Append() is the only mutator. No transition is ever edited or removed.
  Corrections happen by appending further transitions, never by rewriting
  history.

SEE ALSO:
  - timecard.go: Lifecycle operations that append transitions
  - types.go: Transition and TransitionKind definitions
*/
package timecard

import "time"

// TransitionLedger is the ordered, append-only history of status changes.
// Order is append order; OccurredAt is monotonically non-decreasing because
// it is stamped at append time.
type TransitionLedger []Transition

// Append records a status change. This is the only mutator.
func (l *TransitionLedger) Append(kind TransitionKind, actor, resource Actor, at time.Time) Transition {
	tr := Transition{
		Kind:           kind,
		Actor:          actor,
		Resource:       resource,
		OccurredAt:     at,
		TransitionedTo: kind.StatusFor(),
	}
	*l = append(*l, tr)
	return tr
}

// Latest returns the most recently appended transition.
func (l TransitionLedger) Latest() (Transition, bool) {
	if len(l) == 0 {
		return Transition{}, false
	}
	return l[len(l)-1], true
}

// LatestOfStatus returns the most recent transition (by OccurredAt) that
// moved the timecard into the given status.
func (l TransitionLedger) LatestOfStatus(status Status) (Transition, bool) {
	var (
		best  Transition
		found bool
	)
	for _, tr := range l {
		if tr.TransitionedTo != status {
			continue
		}
		if !found || tr.OccurredAt.After(best.OccurredAt) {
			best = tr
			found = true
		}
	}
	return best, found
}
