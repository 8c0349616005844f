package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfc18/contactplus/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"phone", "gmail"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusMerging))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusMerging, got.Status)
	assert.Equal(t, []string{"phone", "gmail"}, got.Sources)

	result := &model.RunResult{RecordsIn: 10, Clusters: 7, ContactsOut: 7, ReviewFlagged: 2}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 10, got.Result.RecordsIn)
	assert.Equal(t, 7, got.Result.ContactsOut)
}

func TestSQLite_FailedResultSetsFailedStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"phone"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunResult(ctx, run.ID, &model.RunResult{Error: "merge exploded"}))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_UpdateUnknownRun(t *testing.T) {
	st := newTestStore(t)
	err := st.UpdateRunStatus(context.Background(), "no-such-run", model.RunStatusComplete)
	assert.Error(t, err)
}

func TestSQLite_GetUnknownRun(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestSQLite_ListRunsFiltered(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, []string{"phone"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, []string{"gmail"})
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Phases(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"phone"})
	require.NoError(t, err)

	phase, err := st.CreatePhase(ctx, run.ID, "2_cluster")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStatusRunning, phase.Status)

	require.NoError(t, st.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Name:   "2_cluster",
		Status: model.PhaseStatusComplete,
	}))

	assert.Error(t, st.CompletePhase(ctx, "no-such-phase", &model.PhaseResult{Status: model.PhaseStatusComplete}))
}

func TestSQLite_ContactsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"phone", "gmail"})
	require.NoError(t, err)

	contacts := []model.CanonicalContact{
		{
			ContactID:   "bbb",
			DisplayName: "Max Muster",
			Emails:      []model.Email{{Address: "max@example.com"}},
			Provenance: []model.RecordRef{
				{SourceName: "phone", SourceIndex: 0},
				{SourceName: "gmail", SourceIndex: 3},
			},
			QualityFlags: []model.QualityInsight{{IssueType: model.IssueBusinessName, Confidence: 0.7}},
		},
		{ContactID: "aaa", DisplayName: "Anna Schmidt", Provenance: []model.RecordRef{{SourceName: "phone", SourceIndex: 1}}},
	}
	require.NoError(t, st.SaveContacts(ctx, run.ID, contacts))

	got, err := st.ListContacts(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "aaa", got[0].ContactID, "listing orders by contact ID")
	assert.Equal(t, "Max Muster", got[1].DisplayName)
	assert.Len(t, got[1].Provenance, 2)
	assert.Len(t, got[1].QualityFlags, 1)

	// Saving again replaces rather than duplicating.
	require.NoError(t, st.SaveContacts(ctx, run.ID, contacts))
	got, err = st.ListContacts(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLite_AuditRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"phone"})
	require.NoError(t, err)

	entries := []model.AuditEntry{
		{
			RunID:     run.ID,
			ContactID: "abc",
			Action:    "delete",
			Provenance: []model.RecordRef{
				{SourceName: "phone", SourceIndex: 2},
			},
			Reason:    "spam entry",
			CreatedAt: time.Now().UTC(),
		},
	}
	require.NoError(t, st.AppendAudit(ctx, entries))
	require.NoError(t, st.AppendAudit(ctx, nil), "empty append is a no-op")

	got, err := st.ListAudit(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "delete", got[0].Action)
	assert.Equal(t, "spam entry", got[0].Reason)
	assert.Equal(t, entries[0].Provenance, got[0].Provenance)
	assert.NotZero(t, got[0].ID)
}
