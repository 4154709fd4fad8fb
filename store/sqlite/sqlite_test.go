package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/store/sqlite"
	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleCard(owner timecard.Actor) *timecard.Timecard {
	opened := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	tc := timecard.New(owner, opened)
	tc.Lines.Add(timecard.Line{
		Resource:       owner,
		WorkDate:       time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		Project:        "migration",
		Hours:          decimal.NewFromFloat(7.5),
		LineNumber:     decimal.NewFromInt(1),
		RecordIdentity: 42,
		RecordVersion:  2,
		Version:        "v1",
	}, opened.Add(time.Minute))
	return tc
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestRepository_AddAndFind_RoundTrip(t *testing.T) {
	// GIVEN: A timecard with one line and its Entered transition
	repo := newTestRepo(t)
	ctx := context.Background()
	tc := sampleCard("worker-1")

	// WHEN: Stored and reloaded
	require.NoError(t, repo.Add(ctx, tc))
	got, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)

	// THEN: Everything survives the round trip
	assert.Equal(t, tc.ID, got.ID)
	assert.Equal(t, tc.Owner, got.Owner)
	assert.True(t, tc.Opened.Equal(got.Opened))
	assert.Equal(t, int64(1), got.Revision)
	assert.Equal(t, timecard.StatusDraft, got.Status())

	require.Len(t, got.Lines, 1)
	line := got.Lines[0]
	assert.Equal(t, tc.Lines[0].UniqueIdentifier, line.UniqueIdentifier)
	assert.Equal(t, "migration", line.Project)
	assert.Equal(t, "7.5", line.Hours.String())
	assert.Equal(t, 42, line.RecordIdentity)
	assert.Equal(t, time.Monday, line.Day)

	require.Len(t, got.Transitions, 1)
	assert.Equal(t, timecard.KindEntered, got.Transitions[0].Kind)
}

func TestRepository_Find_Unknown(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Find(context.Background(), timecard.ID{})

	assert.ErrorIs(t, err, timecard.ErrNotFound)
}

func TestRepository_All_OrderedByOpened(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := timecard.New("worker-1", time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	newer := timecard.New("worker-2", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	// Stored newest first to prove ordering comes from Opened, not insertion
	require.NoError(t, repo.Add(ctx, newer))
	require.NoError(t, repo.Add(ctx, older))

	cards, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, older.ID, cards[0].ID)
	assert.Equal(t, newer.ID, cards[1].ID)
}

// =============================================================================
// UPDATE AND REVISIONS
// =============================================================================

func TestRepository_Update_PersistsMutations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tc := sampleCard("worker-1")
	require.NoError(t, repo.Add(ctx, tc))

	loaded, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)

	_, err = loaded.Submit("worker-1", time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, loaded))

	got, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, timecard.StatusSubmitted, got.Status())
	assert.Equal(t, int64(2), got.Revision)
	assert.Len(t, got.Transitions, 2)
}

func TestRepository_Update_StaleRevisionConflicts(t *testing.T) {
	// GIVEN: Two independently loaded copies
	repo := newTestRepo(t)
	ctx := context.Background()
	tc := sampleCard("worker-1")
	require.NoError(t, repo.Add(ctx, tc))

	copyA, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)
	copyB, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)

	// WHEN: Both write back
	require.NoError(t, repo.Update(ctx, copyA))
	err = repo.Update(ctx, copyB)

	// THEN: The stale copy is rejected
	assert.ErrorIs(t, err, timecard.ErrConflict)
}

func TestRepository_Update_Unknown(t *testing.T) {
	repo := newTestRepo(t)
	tc := sampleCard("worker-1") // never added

	err := repo.Update(context.Background(), tc)

	assert.ErrorIs(t, err, timecard.ErrNotFound)
}

func TestRepository_Replace_OverwritesUnconditionally(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tc := sampleCard("worker-1")
	require.NoError(t, repo.Add(ctx, tc))

	stale, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)
	fresh, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, fresh))

	// Replace ignores the stale revision
	stale.Lines[0].Project = "rewritten"
	require.NoError(t, repo.Replace(ctx, tc.ID, stale))

	got, err := repo.Find(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Lines[0].Project)
}

// =============================================================================
// DELETE
// =============================================================================

func TestRepository_Delete_RemovesChildren(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tc := sampleCard("worker-1")
	require.NoError(t, repo.Add(ctx, tc))

	require.NoError(t, repo.Delete(ctx, tc.ID))

	_, err := repo.Find(ctx, tc.ID)
	assert.ErrorIs(t, err, timecard.ErrNotFound)

	// Deleting again reports not-found
	assert.ErrorIs(t, repo.Delete(ctx, tc.ID), timecard.ErrNotFound)
}

// =============================================================================
// SERVICE OVER SQLITE - end to end through the real store
// =============================================================================

func TestService_OverSQLite_FullLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	svc := timecard.NewService(repo)
	ctx := context.Background()

	tc, err := svc.Create(ctx, "worker-1")
	require.NoError(t, err)

	line, err := svc.AddLine(ctx, tc.ID, timecard.Line{
		Resource: "worker-1",
		WorkDate: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Project:  "X",
		Hours:    decimal.NewFromInt(8),
	})
	require.NoError(t, err)

	_, err = svc.PatchLineField(ctx, tc.ID, line.UniqueIdentifier, "project", "Y")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, tc.ID, "worker-1")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, tc.ID, "manager-1")
	require.NoError(t, err)

	got, err := svc.Get(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, timecard.StatusApproved, got.Status())
	assert.Equal(t, "Y", got.Lines[0].Project)
}
