package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmaine/budget-preprocessor/internal/domain"
	"github.com/openmaine/budget-preprocessor/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport() *pipeline.RunReport {
	report := pipeline.NewRunReport(pipeline.ModeAll)
	report.Outcomes = []pipeline.FileOutcome{
		{
			Document: domain.SourceDocument{
				Path: "z_Data/ME/2024-2025 ME State Budget.pdf", Family: domain.FamilyBudget, Period: "2024-2025",
			},
			Stage:        pipeline.StageWrite,
			Status:       pipeline.StatusWritten,
			ArtifactPath: "preprocessed_data/budgets/2024-2025_budget.parquet",
		},
		{
			Document: domain.SourceDocument{
				Path: "z_Data/ME General Fund Sources/FY 2020 Revenue ME.pdf", Family: domain.FamilyRevenue, Period: "2020",
			},
			Stage:  pipeline.StageExtract,
			Status: pipeline.StatusFailed,
			Err:    "no recognizable revenue table rows on Exhibit I page",
		},
	}
	report.FinishedAt = report.StartedAt.Add(3 * time.Second)
	return report
}

func TestRecordRunAndRecentRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport()
	require.NoError(t, store.RecordRun(ctx, report))

	second := pipeline.NewRunReport(pipeline.ModeValidateOnly)
	second.FinishedAt = second.StartedAt.Add(time.Second)
	require.NoError(t, store.RecordRun(ctx, second))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, string(pipeline.ModeValidateOnly), runs[0].Mode)
	assert.Equal(t, second.ID.String(), runs[0].ID)

	first := runs[1]
	assert.Equal(t, report.ID.String(), first.ID)
	assert.Equal(t, string(pipeline.ModeAll), first.Mode)
	assert.Equal(t, 2, first.Processed)
	assert.Equal(t, 1, first.Succeeded)
	assert.Equal(t, 1, first.Failed)
	assert.Equal(t, 0, first.Skipped)
}

func TestRecentRuns_LimitAndEmpty(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runs, err := store.RecentRuns(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	for i := 0; i < 3; i++ {
		r := pipeline.NewRunReport(pipeline.ModeBudget)
		r.FinishedAt = r.StartedAt
		require.NoError(t, store.RecordRun(ctx, r))
	}

	runs, err = store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
