package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/pkg/config"
	"github.com/wonny/vwapcast/pkg/redis"
)

func sampleReport(runID string) *contracts.RunReport {
	return &contracts.RunReport{
		RunID:     runID,
		Source:    "archive:test.zip",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Results:   tableResults,
		Summary:   Summarize(tableResults, nil, 2),
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, contracts.ErrReportNotFound)

	require.NoError(t, store.Save(ctx, sampleReport("run-1")))
	require.NoError(t, store.Save(ctx, sampleReport("run-2")))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)

	first, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", first.RunID)
	require.Len(t, first.Results, 2)
	assert.True(t, first.Results[1].Numeric)
	assert.False(t, first.Results[1].TrainRMSE.IsFinite())

	csvPath, err := store.ArtifactPath("run-1", ResultsFile)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TCS")

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, contracts.ErrReportNotFound)
	_, err = store.Get(ctx, "../etc")
	assert.ErrorIs(t, err, contracts.ErrReportNotFound)
	_, err = store.ArtifactPath("run-1", "../latest.json")
	assert.ErrorIs(t, err, contracts.ErrReportNotFound)

	assert.Error(t, store.Save(ctx, sampleReport("")))
}

func TestFileStore_RunsAndPrune(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	runs, err := store.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)

	for _, id := range []string{"20240101-180000", "20240103-180000", "20240102-180000"} {
		require.NoError(t, store.Save(ctx, sampleReport(id)))
	}
	// stray directory without a report is ignored
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), "charts-tmp"), 0o755))

	runs, err = store.Runs()
	require.NoError(t, err)
	assert.Equal(t, []string{"20240103-180000", "20240102-180000", "20240101-180000"}, runs)

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101-180000"}, removed)

	runs, err = store.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	removed, err = store.Prune(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = store.Prune(ctx, 0)
	assert.Error(t, err)
}

func TestRedisStore_DisabledCachePassesThrough(t *testing.T) {
	ctx := context.Background()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	files := NewFileStore(t.TempDir())
	store := NewRedisStore(files, redis.NewCache(client, "vwapcast"), time.Hour, zerolog.Nop())

	require.NoError(t, store.Save(ctx, sampleReport("run-9")))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-9", latest.RunID)

	got, err := store.Get(ctx, "run-9")
	require.NoError(t, err)
	assert.Equal(t, "archive:test.zip", got.Source)

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, contracts.ErrReportNotFound)

	_, err = os.Stat(filepath.Join(files.Root(), "run-9", ReportFile))
	assert.NoError(t, err)
}
