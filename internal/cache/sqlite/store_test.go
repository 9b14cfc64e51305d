package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testExercise(id, name string) domain.Exercise {
	return domain.Exercise{
		ID:        id,
		TrainerID: "t1",
		Name:      name,
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestUpsertThenFetchByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	original := testExercise("e1", "Back Squat")
	original.Description = "Bar on traps"
	require.NoError(t, store.Upsert(ctx, original))

	fetched, found, err := store.FetchByID(ctx, "e1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original, fetched)
}

func TestFetchByIDAbsentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	_, found, err := store.FetchByID(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertPreservesSyncStatus(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	require.NoError(t, store.Upsert(ctx, testExercise("e1", "Deadlift")))
	require.NoError(t, store.MarkPendingUpload(ctx, "e1"))

	// A plain upsert must not silently clear the pending flag.
	edited := testExercise("e1", "Deadlift (edited)")
	require.NoError(t, store.Upsert(ctx, edited))

	meta, found, err := store.Meta(ctx, "e1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SyncPendingUpload, meta.Status)

	// An explicit status request does transition it.
	require.NoError(t, store.Upsert(ctx, edited, cache.WithStatus(domain.SyncSynced)))
	meta, _, err = store.Meta(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, meta.Status)
}

func TestSoftDeletedNeverReturned(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	require.NoError(t, store.Upsert(ctx, testExercise("e1", "Bench Press")))
	require.NoError(t, store.Upsert(ctx, testExercise("e2", "Overhead Press")))
	require.NoError(t, store.MarkDeleted(ctx, "e1"))

	all, err := store.FetchAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "e2", all[0].ID)

	_, found, err := store.FetchByID(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, found, "soft-deleted record must not be readable")

	// But it is retained, queued for the flush, until the remote ack.
	pending, err := store.PendingUpload(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e1", pending[0].Record.ID)
	assert.True(t, pending[0].Deleted)
}

func TestDownloadMergeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	server := []domain.Exercise{
		testExercise("e1", "Squat"),
		testExercise("e2", "Lunge"),
	}
	for _, rec := range server {
		require.NoError(t, store.Upsert(ctx, rec, cache.WithStatus(domain.SyncSynced)))
	}
	first, err := store.FetchAll(ctx, nil)
	require.NoError(t, err)

	// Re-running the same download leaves the observable state unchanged.
	for _, rec := range server {
		require.NoError(t, store.Upsert(ctx, rec, cache.WithStatus(domain.SyncSynced)))
	}
	second, err := store.FetchAll(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchAllOrderAndPredicate(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	require.NoError(t, store.Upsert(ctx, testExercise("e3", "curl")))
	require.NoError(t, store.Upsert(ctx, testExercise("e1", "Squat")))
	require.NoError(t, store.Upsert(ctx, testExercise("e2", "Bench")))

	all, err := store.FetchAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Stable secondary key: name, case-insensitive.
	assert.Equal(t, []string{"Bench", "curl", "Squat"},
		[]string{all[0].Name, all[1].Name, all[2].Name})

	squatsOnly, err := store.FetchAll(ctx, func(e domain.Exercise) bool { return e.Name == "Squat" })
	require.NoError(t, err)
	require.Len(t, squatsOnly, 1)
	assert.Equal(t, "e1", squatsOnly[0].ID)
}

func TestWorkoutsAreReverseChronological(t *testing.T) {
	ctx := context.Background()
	store := NewWorkoutStore(openTestDB(t), nil)

	older := domain.Workout{ID: "w1", Name: "Day 1", CreatedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	newer := domain.Workout{ID: "w2", Name: "Day 2", CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Upsert(ctx, older))
	require.NoError(t, store.Upsert(ctx, newer))

	all, err := store.FetchAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "w2", all[0].ID)
	assert.Equal(t, "w1", all[1].ID)
}

func TestStatusTransitionsStampLastModified(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	require.NoError(t, store.Upsert(ctx, testExercise("e1", "Row")))
	current = base.Add(time.Minute)
	require.NoError(t, store.MarkPendingUpload(ctx, "e1"))

	meta, found, err := store.Meta(ctx, "e1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, meta.LastModified.Equal(base.Add(time.Minute)))
}

func TestMarkUnknownRecordFails(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	assert.ErrorIs(t, store.MarkSynced(ctx, "ghost"), cache.ErrUpdateFailed)
	assert.ErrorIs(t, store.DeleteHard(ctx, "ghost"), cache.ErrDeleteFailed)
}

func TestDeleteHardRemovesRow(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore(openTestDB(t), nil)

	require.NoError(t, store.Upsert(ctx, testExercise("e1", "Dip")))
	require.NoError(t, store.MarkDeleted(ctx, "e1"))
	require.NoError(t, store.DeleteHard(ctx, "e1"))

	_, found, err := store.Meta(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, found)

	pending, err := store.PendingUpload(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
