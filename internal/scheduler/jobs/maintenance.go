package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/vwapcast/pkg/logger"
)

// RunPruner removes old run artifacts
type RunPruner interface {
	Prune(ctx context.Context, keep int) ([]string, error)
}

// ReportPruneJob keeps only the newest report runs on disk
type ReportPruneJob struct {
	pruner RunPruner
	keep   int
	logger *logger.Logger
}

// NewReportPruneJob creates a new report prune job
func NewReportPruneJob(pruner RunPruner, keep int, log *logger.Logger) *ReportPruneJob {
	return &ReportPruneJob{
		pruner: pruner,
		keep:   keep,
		logger: log,
	}
}

// Name returns the job name
func (j *ReportPruneJob) Name() string {
	return "report_prune"
}

// Schedule returns the cron schedule (daily at 03:30)
func (j *ReportPruneJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run executes the prune
func (j *ReportPruneJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled report prune")

	removed, err := j.pruner.Prune(ctx, j.keep)
	if err != nil {
		return fmt.Errorf("prune reports: %w", err)
	}

	if len(removed) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": len(removed),
			"keep":    j.keep,
		}).Info("Report prune completed")
	}

	return nil
}
