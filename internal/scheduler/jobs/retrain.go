package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vwapcast/internal/brain"
	"github.com/wonny/vwapcast/pkg/logger"
)

// RunExecutor runs one evaluation pass
type RunExecutor interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RetrainJob re-runs the per-company evaluation on a schedule
type RetrainJob struct {
	executor RunExecutor
	base     brain.RunConfig
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewRetrainJob creates a new retrain job. base.RunID is ignored; every run gets a fresh ID.
func NewRetrainJob(executor RunExecutor, base brain.RunConfig, schedule string, log *logger.Logger) *RetrainJob {
	return &RetrainJob{
		executor: executor,
		base:     base,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *RetrainJob) Name() string {
	return "vwap_retrain"
}

// Schedule returns the cron schedule (weekdays 18:00 by default)
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run executes one evaluation pass
func (j *RetrainJob) Run(ctx context.Context) error {
	config := j.base
	config.RunID = brain.NewRunID(j.now())

	j.logger.WithField("run_id", config.RunID).Info("Starting scheduled retrain")

	result, err := j.executor.Run(ctx, config)
	if err != nil {
		return fmt.Errorf("retrain %s: %w", config.RunID, err)
	}

	fields := map[string]interface{}{
		"run_id":   result.RunID,
		"records":  result.Records,
		"duration": result.Duration.String(),
	}
	if result.Report != nil {
		fields["succeeded"] = result.Report.Summary.Succeeded
		fields["failed"] = result.Report.Summary.Failed
	}
	j.logger.WithFields(fields).Info("Scheduled retrain completed")

	return nil
}
