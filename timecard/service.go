/*
service.go - Operation surface over the timecard aggregate

PURPOSE:
  Implements the caller-facing operations: each one loads a timecard from the
  injected Repository, executes one guarded mutation on the aggregate, and
  persists the mutated copy back. The store handle is passed in explicitly;
  its lifecycle is owned by the process, not by each request handler.

READ-MODIFY-WRITE:
  Mutating operations go through Update, which is revision-checked: a
  concurrent writer that persisted first causes ErrConflict, and the caller
  retries with a fresh load. Reads work on the deep copy Find returns, so
  they always observe a consistent snapshot of one aggregate.

SEE ALSO:
  - timecard.go: The guarded mutations
  - store.go: Repository contract
  - api/handlers.go: Transport mapping of these operations
*/
package timecard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes every timecard operation over an injected Repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// =============================================================================
// TIMECARD OPERATIONS
// =============================================================================

// List returns all timecards ordered by Opened.
func (s *Service) List(ctx context.Context) ([]*Timecard, error) {
	return s.repo.All(ctx)
}

// Get returns one timecard or ErrNotFound.
func (s *Service) Get(ctx context.Context, id ID) (*Timecard, error) {
	return s.repo.Find(ctx, id)
}

// Create opens a new draft timecard for the given owner.
func (s *Service) Create(ctx context.Context, owner Actor) (*Timecard, error) {
	tc := New(owner, s.now())
	if err := s.repo.Add(ctx, tc); err != nil {
		return nil, err
	}
	return tc, nil
}

// Delete removes a timecard. Only Draft and Cancelled timecards may be
// deleted.
func (s *Service) Delete(ctx context.Context, id ID) error {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if !tc.Deletable() {
		return &InvalidStateError{Operation: "delete", Status: tc.Status()}
	}
	return s.repo.Delete(ctx, id)
}

// =============================================================================
// LINE OPERATIONS
// =============================================================================

// Lines returns the timecard's lines in presentation order
// (work date, then recorded timestamp).
func (s *Service) Lines(ctx context.Context, id ID) ([]Line, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return tc.Lines.PresentationOrder(), nil
}

// AddLine appends a line to a draft timecard and returns the annotated line.
func (s *Service) AddLine(ctx context.Context, id ID, line Line) (Line, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return Line{}, err
	}
	annotated, err := tc.AddLine(line, s.now())
	if err != nil {
		return Line{}, err
	}
	if err := s.repo.Update(ctx, tc); err != nil {
		return Line{}, err
	}
	return annotated, nil
}

// ReplaceLine replaces a whole line, keeping its ordinal position, and
// returns the updated lines in presentation order.
func (s *Service) ReplaceLine(ctx context.Context, id ID, unique uuid.UUID, line Line) ([]Line, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tc.ReplaceLine(unique, line, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tc); err != nil {
		return nil, err
	}
	return tc.Lines.PresentationOrder(), nil
}

// PatchLineField patches one field of one line and returns the updated lines
// in presentation order.
func (s *Service) PatchLineField(ctx context.Context, id ID, unique uuid.UUID, field, raw string) ([]Line, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tc.PatchLineField(unique, field, raw); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tc); err != nil {
		return nil, err
	}
	return tc.Lines.PresentationOrder(), nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Transitions returns the full transition history in append order.
func (s *Service) Transitions(ctx context.Context, id ID) ([]Transition, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return tc.Transitions, nil
}

func (s *Service) Submit(ctx context.Context, id ID, actor Actor) (Transition, error) {
	return s.transition(ctx, id, func(tc *Timecard, now time.Time) (Transition, error) {
		return tc.Submit(actor, now)
	})
}

func (s *Service) Cancel(ctx context.Context, id ID, actor Actor) (Transition, error) {
	return s.transition(ctx, id, func(tc *Timecard, now time.Time) (Transition, error) {
		return tc.Cancel(actor, now)
	})
}

func (s *Service) Reject(ctx context.Context, id ID, actor Actor) (Transition, error) {
	return s.transition(ctx, id, func(tc *Timecard, now time.Time) (Transition, error) {
		return tc.Reject(actor, now)
	})
}

func (s *Service) Approve(ctx context.Context, id ID, actor Actor) (Transition, error) {
	return s.transition(ctx, id, func(tc *Timecard, now time.Time) (Transition, error) {
		return tc.Approve(actor, now)
	})
}

func (s *Service) transition(ctx context.Context, id ID, op func(*Timecard, time.Time) (Transition, error)) (Transition, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return Transition{}, err
	}
	tr, err := op(tc, s.now())
	if err != nil {
		return Transition{}, err
	}
	if err := s.repo.Update(ctx, tc); err != nil {
		return Transition{}, err
	}
	return tr, nil
}

// =============================================================================
// TRANSITION QUERIES - Gated on current status
// =============================================================================

func (s *Service) Submittal(ctx context.Context, id ID) (Transition, error) {
	return s.transitionInto(ctx, id, StatusSubmitted)
}

func (s *Service) Cancellation(ctx context.Context, id ID) (Transition, error) {
	return s.transitionInto(ctx, id, StatusCancelled)
}

func (s *Service) Rejection(ctx context.Context, id ID) (Transition, error) {
	return s.transitionInto(ctx, id, StatusRejected)
}

func (s *Service) Approval(ctx context.Context, id ID) (Transition, error) {
	return s.transitionInto(ctx, id, StatusApproved)
}

func (s *Service) transitionInto(ctx context.Context, id ID, status Status) (Transition, error) {
	tc, err := s.repo.Find(ctx, id)
	if err != nil {
		return Transition{}, err
	}
	return tc.TransitionInto(status)
}
