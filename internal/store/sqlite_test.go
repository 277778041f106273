package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleRows() []model.EnrichedLead {
	return []model.EnrichedLead{
		{
			Lead:             model.Lead{CompanyName: "Acme", Website: "acme.example", Town: "Boston"},
			Processed:        true,
			OwnerName:        "Jane Doe",
			Confidence:       model.ConfidenceHigh,
			DiscoveredEmails: []string{"info@acme.example"},
			PotentialEmails:  []string{"jane@acme.example"},
			KeyFacts:         []string{"Founded 2001"},
		},
		model.Unprocessed(model.Lead{CompanyName: "Down", Website: "down.example"}, "connection refused"),
		model.Unprocessed(model.Lead{CompanyName: "Nosite", Website: "N/A"}, ""),
	}
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunSourceUpload, "leads.csv", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Nil(t, run.FinishedAt)

	rows := sampleRows()
	require.NoError(t, st.SaveResults(ctx, run.ID, rows))
	processed, failed := Counts(rows)
	require.NoError(t, st.FinishRun(ctx, run.ID, processed, failed))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunSourceUpload, got.Source)
	assert.Equal(t, "leads.csv", got.Label)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Processed)
	assert.Equal(t, 1, got.Failed)
	require.NotNil(t, got.FinishedAt)

	results, err := st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, rows, results)
}

func TestSQLite_SaveResultsOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunSourceAPI, "", 1)
	require.NoError(t, err)

	first := []model.EnrichedLead{model.Unprocessed(model.Lead{CompanyName: "A", Website: "a.example"}, "timeout")}
	require.NoError(t, st.SaveResults(ctx, run.ID, first))
	second := []model.EnrichedLead{{Lead: model.Lead{CompanyName: "A", Website: "a.example"}, Processed: true}}
	require.NoError(t, st.SaveResults(ctx, run.ID, second))

	results, err := st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Processed)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_FinishRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.FinishRun(context.Background(), "missing", 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	for _, label := range []string{"one", "two", "three"} {
		_, err := st.CreateRun(ctx, model.RunSourceGenerate, label, 0)
		require.NoError(t, err)
	}

	runs, err = st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "three", runs[0].Label)
	assert.Equal(t, "two", runs[1].Label)
}

func TestSQLite_GetResults_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	results, err := st.GetResults(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, DriverNone, "")
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = Open(ctx, "mysql", "")
	assert.Error(t, err)

	st, err = Open(ctx, "", filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	_, err = st.ListRuns(ctx, 5)
	assert.NoError(t, err)
}

func TestCounts(t *testing.T) {
	processed, failed := Counts(sampleRows())
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, failed)
}
