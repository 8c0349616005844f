package monitoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/store"
)

func seedStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func addRun(t *testing.T, st *store.SQLiteStore, result *model.RunResult) *model.Run {
	t.Helper()
	ctx := context.Background()
	run, err := st.CreateRun(ctx, []string{"phone", "gmail"})
	require.NoError(t, err)
	if result != nil {
		require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))
	}
	return run
}

func TestCollect_Empty(t *testing.T) {
	st := seedStore(t)

	snap, err := NewCollector(st).Collect(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, snap.RunsTotal)
	assert.Zero(t, snap.FailRate)
	assert.Zero(t, snap.DedupRate)
	assert.NotZero(t, snap.CollectedAt)
}

func TestCollect_RatesFromResults(t *testing.T) {
	st := seedStore(t)

	// Two completed runs: 100 records in, 70 contacts out, 10 deleted.
	addRun(t, st, &model.RunResult{RecordsIn: 60, ContactsOut: 40, Deleted: 5, ReviewFlagged: 8})
	addRun(t, st, &model.RunResult{RecordsIn: 40, ContactsOut: 30, Deleted: 5, ReviewFlagged: 6})
	// One failed run.
	addRun(t, st, &model.RunResult{Error: "source missing"})
	// One still in flight.
	addRun(t, st, nil)

	snap, err := NewCollector(st).Collect(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.RunsTotal)
	assert.Equal(t, 2, snap.RunsComplete)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.Equal(t, 1, snap.RunsOther)
	assert.InDelta(t, 1.0/3.0, snap.FailRate, 1e-9)

	assert.Equal(t, 100, snap.RecordsIn)
	assert.Equal(t, 70, snap.ContactsOut)
	assert.Equal(t, 10, snap.Deleted)
	assert.Equal(t, 14, snap.ReviewFlagged)
	assert.InDelta(t, 0.2, snap.DedupRate, 1e-9, "20 of 100 records absorbed")
	assert.InDelta(t, 0.2, snap.FlagRate, 1e-9)
}

func TestCollect_LookbackExcludesOldRuns(t *testing.T) {
	st := seedStore(t)
	addRun(t, st, &model.RunResult{RecordsIn: 10, ContactsOut: 10})

	// Fresh runs are inside any positive window.
	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RunsTotal)
	assert.Equal(t, 24, snap.LookbackHours)
}
