package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/brain"
	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/pkg/logger"
)

type fakeExecutor struct {
	configs []brain.RunConfig
	err     error
}

func (f *fakeExecutor) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	f.configs = append(f.configs, config)
	if f.err != nil {
		return &brain.RunResult{RunID: config.RunID, Error: f.err}, f.err
	}
	return &brain.RunResult{
		RunID:   config.RunID,
		Success: true,
		Records: 10,
		Report: &contracts.RunReport{
			RunID:   config.RunID,
			Summary: contracts.Summary{Companies: 2, Succeeded: 2},
		},
	}, nil
}

type fakePruner struct {
	keep    int
	removed []string
	err     error
}

func (f *fakePruner) Prune(ctx context.Context, keep int) ([]string, error) {
	f.keep = keep
	return f.removed, f.err
}

func TestRetrainJob(t *testing.T) {
	exec := &fakeExecutor{}
	base := brain.RunConfig{RunID: "ignored", ConfigHash: "abc", Workers: 4, Symbols: []string{"TCS"}}
	job := NewRetrainJob(exec, base, "0 0 18 * * 1-5", logger.Nop())
	job.now = func() time.Time { return time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC) }

	assert.Equal(t, "vwap_retrain", job.Name())
	assert.Equal(t, "0 0 18 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, exec.configs, 1)

	got := exec.configs[0]
	assert.Equal(t, "20240304-180000", got.RunID)
	assert.Equal(t, "abc", got.ConfigHash)
	assert.Equal(t, 4, got.Workers)
	assert.Equal(t, []string{"TCS"}, got.Symbols)
}

func TestRetrainJob_Error(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("load failed")}
	job := NewRetrainJob(exec, brain.RunConfig{}, "@daily", logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load failed")
}

func TestReportPruneJob(t *testing.T) {
	pruner := &fakePruner{removed: []string{"20240101-180000"}}
	job := NewReportPruneJob(pruner, 30, logger.Nop())

	assert.Equal(t, "report_prune", job.Name())
	assert.NotEmpty(t, job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 30, pruner.keep)

	pruner.err = errors.New("disk")
	assert.Error(t, job.Run(context.Background()))
}
