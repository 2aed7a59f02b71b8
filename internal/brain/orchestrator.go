package brain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/forecast"
	"github.com/wonny/vwapcast/internal/prep"
	"github.com/wonny/vwapcast/internal/realtime"
	"github.com/wonny/vwapcast/internal/report"
	"github.com/wonny/vwapcast/pkg/logger"
	"github.com/wonny/vwapcast/pkg/metrics"
)

// Stage names
const (
	StageLoad   = "load"
	StageTrain  = "train"
	StageReport = "report"
)

// Orchestrator coordinates load → per-company train/evaluate → report
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	source   contracts.DataSource
	runner   *forecast.Runner
	reporter *report.Reporter
	metrics  *metrics.Recorder
	progress realtime.Publisher // optional live progress

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID      string   // empty = derived from start time
	ConfigHash string
	Workers    int      // concurrent company pipelines, <1 = 1
	Symbols    []string // restrict to these symbols, empty = all
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Records         int
	Report          *contracts.RunReport
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator. recorder may be nil.
func NewOrchestrator(
	source contracts.DataSource,
	runner *forecast.Runner,
	reporter *report.Reporter,
	recorder *metrics.Recorder,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:   source,
		runner:   runner,
		reporter: reporter,
		metrics:  recorder,
		logger:   logger,
	}
}

// WithProgress publishes run and per-company progress events to p
func (o *Orchestrator) WithProgress(p realtime.Publisher) *Orchestrator {
	o.progress = p
	return o
}

// NewRunID formats a sortable run identifier
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}

// companySlot holds one company's pipeline output at its symbol position
type companySlot struct {
	outcome contracts.CompanyOutcome
	err     error
}

// Run executes the complete pipeline.
// Per-company errors become Failures; load errors, cancellation and unexpected errors abort the run.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = NewRunID(startTime)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	result := &RunResult{
		RunID:           config.RunID,
		CompletedStages: make([]string, 0, 3),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"source":      o.source.Name(),
		"workers":     config.Workers,
		"config_hash": config.ConfigHash,
	}).Info("Starting pipeline run")

	// 1. Load
	records, err := o.source.Load(ctx)
	if err != nil {
		return o.fail(result, startTime, fmt.Errorf("%s failed: %w", StageLoad, err))
	}
	result.Records = len(records)
	result.CompletedStages = append(result.CompletedStages, StageLoad)

	symbols := config.Symbols
	if len(symbols) == 0 {
		symbols = prep.Symbols(records)
	}
	o.publish(realtime.Event{Type: realtime.EventRunStarted, RunID: config.RunID, Total: len(symbols)})

	// 2. Train / evaluate
	slots, err := o.runCompanies(ctx, config.RunID, records, symbols, config.Workers)
	if err != nil {
		return o.fail(result, startTime, fmt.Errorf("%s failed: %w", StageTrain, err))
	}
	result.CompletedStages = append(result.CompletedStages, StageTrain)

	outcomes, failures := o.collect(symbols, slots)

	// 3. Report
	rep, err := o.reporter.Publish(ctx, report.RunInput{
		RunID:      config.RunID,
		Source:     o.source.Name(),
		ConfigHash: config.ConfigHash,
		StartedAt:  startTime,
		FinishedAt: time.Now(),
		Symbols:    symbols,
		Outcomes:   outcomes,
		Failures:   failures,
	})
	result.Report = rep
	if err != nil {
		return o.fail(result, startTime, fmt.Errorf("%s failed: %w", StageReport, err))
	}
	result.CompletedStages = append(result.CompletedStages, StageReport)

	if o.metrics != nil {
		o.metrics.RecordRun()
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	o.publish(realtime.Event{
		Type:   realtime.EventRunFinished,
		RunID:  config.RunID,
		Status: "ok",
		Done:   len(symbols),
		Total:  len(symbols),
	})

	o.logger.WithFields(map[string]interface{}{
		"run_id":    config.RunID,
		"companies": len(symbols),
		"succeeded": rep.Summary.Succeeded,
		"failed":    rep.Summary.Failed,
		"duration":  result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

// runCompanies runs every company with at most workers in flight.
// Each result lands at its symbol index so table order never depends on scheduling.
func (o *Orchestrator) runCompanies(ctx context.Context, runID string, records []contracts.Record, symbols []string, workers int) ([]companySlot, error) {
	groups := prep.GroupBySymbol(records)
	slots := make([]companySlot, len(symbols))
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		series := groups[symbol]
		series.Symbol = symbol

		g.Go(func() error {
			out, err := o.runner.RunSeries(gctx, series)
			slots[i] = companySlot{outcome: out, err: err}
			if err != nil && !contracts.IsCompanyError(err) {
				return err
			}
			o.publishCompany(runID, symbol, out, err, int(atomic.AddInt64(&done, 1)), len(symbols))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// collect splits slots into table rows and failures, in symbol order
func (o *Orchestrator) collect(symbols []string, slots []companySlot) ([]contracts.CompanyOutcome, []contracts.Failure) {
	var outcomes []contracts.CompanyOutcome
	var failures []contracts.Failure

	for i, slot := range slots {
		symbol := symbols[i]
		if slot.err == nil {
			outcomes = append(outcomes, slot.outcome)
			o.record("ok", slot.outcome)
			continue
		}

		kind := contracts.FailureKindOf(slot.err)
		failures = append(failures, contracts.Failure{
			Symbol:  symbol,
			Kind:    kind,
			Message: slot.err.Error(),
		})

		// numeric failures keep a NaN row in the table
		var numeric *contracts.NumericError
		if errors.As(slot.err, &numeric) {
			outcomes = append(outcomes, slot.outcome)
		}

		o.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"kind":   string(kind),
		}).WithError(slot.err).Warn("Company skipped")

		if o.metrics != nil {
			o.metrics.RecordFailure(string(kind))
		}
		o.record("failed", slot.outcome)
	}
	return outcomes, failures
}

func (o *Orchestrator) record(status string, out contracts.CompanyOutcome) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCompany(status, out.Duration.Seconds())
	if status == "ok" {
		o.metrics.RecordRMSE(out.Symbol, out.TrainRMSE, out.TestRMSE)
	}
}

func (o *Orchestrator) publish(ev realtime.Event) {
	if o.progress == nil {
		return
	}
	ev.Timestamp = time.Now()
	o.progress.Publish(ev)
}

func (o *Orchestrator) publishCompany(runID, symbol string, out contracts.CompanyOutcome, err error, done, total int) {
	if o.progress == nil {
		return
	}
	ev := realtime.Event{
		Type:   realtime.EventCompanyDone,
		RunID:  runID,
		Symbol: symbol,
		Status: "ok",
		Done:   done,
		Total:  total,
	}
	if err != nil {
		ev.Status = string(contracts.FailureKindOf(err))
	} else if !math.IsNaN(out.TestRMSE) && !math.IsInf(out.TestRMSE, 0) {
		rmse := out.TestRMSE
		ev.TestRMSE = &rmse
	}
	o.publish(ev)
}

func (o *Orchestrator) fail(result *RunResult, startTime time.Time, err error) (*RunResult, error) {
	result.Error = err
	result.Duration = time.Since(startTime)
	o.publish(realtime.Event{Type: realtime.EventRunFinished, RunID: result.RunID, Status: "failed"})
	o.logger.WithError(err).Error("Pipeline run failed")
	return result, err
}
