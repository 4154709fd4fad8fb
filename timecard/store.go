/*
store.go - Persistence interface for timecard aggregates

PURPOSE:
  Defines the interface between the domain logic and storage. The Repository
  is a keyed store of whole aggregates; there are no partial updates.

CONCURRENCY CONTRACT:
  Every operation is a read-modify-write over one aggregate. The Repository
  enforces optimistic concurrency: Update compares the caller's Revision
  against the stored one and fails with ErrConflict when the stored copy
  advanced since load. Find returns a deep copy, so a consistent snapshot is
  always observed.

  Replace is the unconditional overwrite the original repository contract
  exposes; the service's mutating path always goes through Update.

IMPLEMENTATIONS:
  - timecard/store: In-memory, for testing/dev
  - store/sqlite:   Production SQLite

SEE ALSO:
  - service.go: The only consumer of this interface
*/
package timecard

import "context"

// Repository is the keyed store of timecard aggregates.
type Repository interface {
	// All returns every timecard, ordered by Opened ascending.
	All(ctx context.Context) ([]*Timecard, error)

	// Find returns a deep copy of the timecard, or ErrNotFound.
	Find(ctx context.Context, id ID) (*Timecard, error)

	// Add stores a new timecard at Revision 1.
	Add(ctx context.Context, tc *Timecard) error

	// Update persists a mutated aggregate. Fails with ErrConflict when the
	// stored revision differs from tc.Revision; on success the stored copy
	// (and tc) advance to Revision+1.
	Update(ctx context.Context, tc *Timecard) error

	// Replace overwrites the stored aggregate unconditionally.
	// Fails with ErrNotFound when id is unknown.
	Replace(ctx context.Context, id ID, tc *Timecard) error

	// Delete removes the aggregate, or ErrNotFound.
	Delete(ctx context.Context, id ID) error
}
