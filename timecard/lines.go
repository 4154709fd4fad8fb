/*
lines.go - Ledger of time-entry lines within a timecard

PURPOSE:
  Owns the ordered collection of lines belonging to one timecard.
  Storage order is insertion order and never changes; presentation order
  (by work date, then recorded timestamp) is a derived view computed on read.

OPERATIONS:
  Add:               annotate + append (never reorders)
  ReplaceAt:         whole-line replace, same ordinal position
  PresentationOrder: sorted read-only copy

ANNOTATION:
  Incoming lines are annotated before storage: a unique identifier is
  assigned when absent, the capture timestamp is stamped, and week/year/day
  are derived from the work date when unset.

SEE ALSO:
  - timecard.go: Status guards around these operations
  - field.go: Single-field patches
*/
package timecard

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LineLedger is the ordered sequence of lines in a timecard.
// Storage order is insertion order.
type LineLedger []Line

// annotate fills in the server-assigned parts of an incoming line.
func annotate(line Line, now time.Time) Line {
	if line.UniqueIdentifier == uuid.Nil {
		line.UniqueIdentifier = uuid.New()
	}
	line.Recorded = now
	if !line.WorkDate.IsZero() {
		if line.Week == 0 || line.Year == 0 {
			year, week := line.WorkDate.ISOWeek()
			line.Week = week
			line.Year = year
		}
		line.Day = line.WorkDate.Weekday()
	}
	return line
}

// Add annotates the line and appends it to the end of the ledger.
// Returns the annotated line as stored.
func (l *LineLedger) Add(line Line, now time.Time) Line {
	line = annotate(line, now)
	*l = append(*l, line)
	return line
}

// ReplaceAt locates the line with the given identifier and replaces it in
// place, keeping its ordinal position. The replacement is annotated the same
// way Add annotates. Returns ErrNotFound if no line matches.
func (l LineLedger) ReplaceAt(unique uuid.UUID, replacement Line, now time.Time) (Line, error) {
	for i := range l {
		if l[i].UniqueIdentifier == unique {
			replacement = annotate(replacement, now)
			l[i] = replacement
			return replacement, nil
		}
	}
	return Line{}, ErrNotFound
}

// ByID returns a pointer into the ledger for the line with the given
// identifier. The pointer is only valid until the ledger is reallocated.
func (l LineLedger) ByID(unique uuid.UUID) (*Line, bool) {
	for i := range l {
		if l[i].UniqueIdentifier == unique {
			return &l[i], true
		}
	}
	return nil, false
}

// PresentationOrder returns a copy of the lines ordered by work date
// ascending, then recorded timestamp ascending. Storage order is untouched;
// each call recomputes from current state.
func (l LineLedger) PresentationOrder() []Line {
	out := append([]Line(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.Before(out[j].WorkDate)
		}
		return out[i].Recorded.Before(out[j].Recorded)
	})
	return out
}
