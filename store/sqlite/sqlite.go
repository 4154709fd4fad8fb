/*
Package sqlite provides a SQLite-backed implementation of the timecard
Repository.

PURPOSE:
  Persists whole timecard aggregates. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  timecards:            Aggregate root rows (owner, opened, revision)
  timecard_lines:       Lines in storage (insertion) order
  timecard_transitions: Append-only transition history

CONCURRENCY:
  Optimistic: Update executes
    UPDATE timecards ... WHERE id = ? AND revision = ?
  and reports ErrConflict when no row matched a live timecard. Aggregates
  are written atomically inside a database transaction, so a reader never
  sees a half-saved card.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  repo, err := sqlite.New("./data/timecards.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

SEE ALSO:
  - timecard/store.go: Interface definition
  - timecard/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/timecard"
)

// Repository implements timecard.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

var _ timecard.Repository = (*Repository)(nil)

// New creates a SQLite repository at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r := &Repository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS timecards (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		opened TEXT NOT NULL,
		revision INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timecards_opened ON timecards(opened);

	CREATE TABLE IF NOT EXISTS timecard_lines (
		timecard_id TEXT NOT NULL REFERENCES timecards(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		unique_id TEXT NOT NULL,
		resource TEXT NOT NULL,
		work_date TEXT NOT NULL,
		recorded TEXT NOT NULL,
		project TEXT NOT NULL,
		hours TEXT NOT NULL,
		line_number TEXT NOT NULL,
		rec_id INTEGER NOT NULL,
		rec_version INTEGER NOT NULL,
		version TEXT NOT NULL,
		week INTEGER NOT NULL,
		year INTEGER NOT NULL,
		day INTEGER NOT NULL,
		PRIMARY KEY (timecard_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_lines_unique
		ON timecard_lines(timecard_id, unique_id);

	-- Append-only transition history
	CREATE TABLE IF NOT EXISTS timecard_transitions (
		timecard_id TEXT NOT NULL REFERENCES timecards(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		actor TEXT NOT NULL,
		resource TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		transitioned_to TEXT NOT NULL,
		PRIMARY KEY (timecard_id, seq)
	);
	`
	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// READS
// =============================================================================

// All returns every timecard, ordered by Opened ascending.
func (r *Repository) All(ctx context.Context) ([]*timecard.Timecard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, opened, revision FROM timecards ORDER BY opened ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*timecard.Timecard
	for rows.Next() {
		tc, err := scanTimecard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, tc := range cards {
		if err := r.loadChildren(ctx, tc); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// Find loads one aggregate, or ErrNotFound.
func (r *Repository) Find(ctx context.Context, id timecard.ID) (*timecard.Timecard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner, opened, revision FROM timecards WHERE id = ?`, id.String())

	tc, err := scanTimecard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, timecard.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, tc); err != nil {
		return nil, err
	}
	return tc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimecard(row rowScanner) (*timecard.Timecard, error) {
	var (
		id, owner, opened string
		revision          int64
	)
	if err := row.Scan(&id, &owner, &opened, &revision); err != nil {
		return nil, err
	}
	tcID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt timecard id %q: %w", id, err)
	}
	openedAt, err := time.Parse(time.RFC3339Nano, opened)
	if err != nil {
		return nil, fmt.Errorf("corrupt opened timestamp %q: %w", opened, err)
	}
	return &timecard.Timecard{
		ID:       tcID,
		Owner:    timecard.Actor(owner),
		Opened:   openedAt,
		Revision: revision,
	}, nil
}

func (r *Repository) loadChildren(ctx context.Context, tc *timecard.Timecard) error {
	lines, err := r.db.QueryContext(ctx,
		`SELECT unique_id, resource, work_date, recorded, project, hours,
		        line_number, rec_id, rec_version, version, week, year, day
		 FROM timecard_lines WHERE timecard_id = ? ORDER BY position ASC`,
		tc.ID.String())
	if err != nil {
		return err
	}
	defer lines.Close()

	for lines.Next() {
		var (
			uniqueID, resource, workDate, recorded, project string
			hours, lineNumber, version                      string
			recID, recVersion, week, year, day              int
		)
		if err := lines.Scan(&uniqueID, &resource, &workDate, &recorded, &project,
			&hours, &lineNumber, &recID, &recVersion, &version, &week, &year, &day); err != nil {
			return err
		}
		line, err := buildLine(uniqueID, resource, workDate, recorded, project,
			hours, lineNumber, version, recID, recVersion, week, year, day)
		if err != nil {
			return err
		}
		tc.Lines = append(tc.Lines, line)
	}
	if err := lines.Err(); err != nil {
		return err
	}

	trs, err := r.db.QueryContext(ctx,
		`SELECT kind, actor, resource, occurred_at, transitioned_to
		 FROM timecard_transitions WHERE timecard_id = ? ORDER BY seq ASC`,
		tc.ID.String())
	if err != nil {
		return err
	}
	defer trs.Close()

	for trs.Next() {
		var kind, actor, resource, occurredAt, transitionedTo string
		if err := trs.Scan(&kind, &actor, &resource, &occurredAt, &transitionedTo); err != nil {
			return err
		}
		at, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return fmt.Errorf("corrupt transition timestamp %q: %w", occurredAt, err)
		}
		tc.Transitions = append(tc.Transitions, timecard.Transition{
			Kind:           timecard.TransitionKind(kind),
			Actor:          timecard.Actor(actor),
			Resource:       timecard.Actor(resource),
			OccurredAt:     at,
			TransitionedTo: timecard.Status(transitionedTo),
		})
	}
	return trs.Err()
}

func buildLine(uniqueID, resource, workDate, recorded, project, hours, lineNumber, version string,
	recID, recVersion, week, year, day int) (timecard.Line, error) {

	uid, err := uuid.Parse(uniqueID)
	if err != nil {
		return timecard.Line{}, fmt.Errorf("corrupt line id %q: %w", uniqueID, err)
	}
	wd, err := time.Parse(time.RFC3339Nano, workDate)
	if err != nil {
		return timecard.Line{}, fmt.Errorf("corrupt work_date %q: %w", workDate, err)
	}
	rec, err := time.Parse(time.RFC3339Nano, recorded)
	if err != nil {
		return timecard.Line{}, fmt.Errorf("corrupt recorded %q: %w", recorded, err)
	}
	h, err := decimal.NewFromString(hours)
	if err != nil {
		return timecard.Line{}, fmt.Errorf("corrupt hours %q: %w", hours, err)
	}
	ln, err := decimal.NewFromString(lineNumber)
	if err != nil {
		return timecard.Line{}, fmt.Errorf("corrupt line_number %q: %w", lineNumber, err)
	}
	return timecard.Line{
		UniqueIdentifier: uid,
		Resource:         timecard.Actor(resource),
		WorkDate:         wd,
		Recorded:         rec,
		Project:          project,
		Hours:            h,
		LineNumber:       ln,
		RecordIdentity:   recID,
		RecordVersion:    recVersion,
		Version:          version,
		Week:             week,
		Year:             year,
		Day:              time.Weekday(day),
	}, nil
}

// =============================================================================
// WRITES - Whole-aggregate, transactional
// =============================================================================

// Add stores a new timecard at revision 1.
func (r *Repository) Add(ctx context.Context, tc *timecard.Timecard) error {
	tc.Revision = 1
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timecards (id, owner, opened, revision) VALUES (?, ?, ?, ?)`,
			tc.ID.String(), string(tc.Owner), tc.Opened.Format(time.RFC3339Nano), tc.Revision)
		if err != nil {
			return err
		}
		return saveChildren(ctx, tx, tc)
	})
}

// Update persists a mutated aggregate. The stored revision must match the
// caller's; otherwise ErrConflict (or ErrNotFound when the card is gone).
func (r *Repository) Update(ctx context.Context, tc *timecard.Timecard) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE timecards SET owner = ?, opened = ?, revision = revision + 1
			 WHERE id = ? AND revision = ?`,
			string(tc.Owner), tc.Opened.Format(time.RFC3339Nano), tc.ID.String(), tc.Revision)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM timecards WHERE id = ?`, tc.ID.String()).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return timecard.ErrNotFound
			}
			return timecard.ErrConflict
		}
		tc.Revision++
		return saveChildren(ctx, tx, tc)
	})
}

// Replace overwrites the stored aggregate unconditionally, keyed by id.
func (r *Repository) Replace(ctx context.Context, id timecard.ID, tc *timecard.Timecard) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE timecards SET owner = ?, opened = ?, revision = revision + 1 WHERE id = ?`,
			string(tc.Owner), tc.Opened.Format(time.RFC3339Nano), id.String())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return timecard.ErrNotFound
		}
		return saveChildren(ctx, tx, tc)
	})
}

// Delete removes the aggregate and (via cascade) its lines and transitions.
func (r *Repository) Delete(ctx context.Context, id timecard.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timecards WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timecard.ErrNotFound
	}
	return nil
}

func (r *Repository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// saveChildren rewrites the lines and transitions for an aggregate inside
// the surrounding database transaction.
func saveChildren(ctx context.Context, tx *sql.Tx, tc *timecard.Timecard) error {
	id := tc.ID.String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM timecard_lines WHERE timecard_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timecard_transitions WHERE timecard_id = ?`, id); err != nil {
		return err
	}

	for i, line := range tc.Lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timecard_lines
			 (timecard_id, position, unique_id, resource, work_date, recorded, project,
			  hours, line_number, rec_id, rec_version, version, week, year, day)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, line.UniqueIdentifier.String(), string(line.Resource),
			line.WorkDate.Format(time.RFC3339Nano), line.Recorded.Format(time.RFC3339Nano),
			line.Project, line.Hours.String(), line.LineNumber.String(),
			line.RecordIdentity, line.RecordVersion, line.Version,
			line.Week, line.Year, int(line.Day))
		if err != nil {
			return err
		}
	}

	for i, tr := range tc.Transitions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timecard_transitions
			 (timecard_id, seq, kind, actor, resource, occurred_at, transitioned_to)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, string(tr.Kind), string(tr.Actor), string(tr.Resource),
			tr.OccurredAt.Format(time.RFC3339Nano), string(tr.TransitionedTo))
		if err != nil {
			return err
		}
	}
	return nil
}
