package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vwapcast/internal/contracts"
)

// Options controls chart sampling
type Options struct {
	Visualize  bool
	SampleSize int
	SampleSeed int64
}

// DefaultOptions samples 5 companies with seed 42
func DefaultOptions() Options {
	return Options{Visualize: true, SampleSize: 5, SampleSeed: 42}
}

// RunInput is everything the orchestrator hands over after training
type RunInput struct {
	RunID      string
	Source     string
	ConfigHash string
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    []string                   // first-appearance order
	Outcomes   []contracts.CompanyOutcome // table rows in symbol order, numeric failures included
	Failures   []contracts.Failure
}

// waiter is implemented by notifiers with pending async work
type waiter interface {
	Wait()
}

// Reporter renders charts for a sample, prints tables and stores the run
// ⭐ SSOT: 리포트 생성은 여기서만
type Reporter struct {
	opts     Options
	out      io.Writer
	renderer contracts.ChartRenderer
	notifier contracts.Notifier
	store    contracts.ReportStore
	saver    RunSaver
	log      zerolog.Logger
}

// NewReporter writes console tables to out (nil disables them)
func NewReporter(opts Options, out io.Writer, log zerolog.Logger) *Reporter {
	return &Reporter{
		opts: opts,
		out:  out,
		log:  log.With().Str("component", "report.reporter").Logger(),
	}
}

// WithCharts sets the chart renderer and its cue notifier (either may be nil)
func (r *Reporter) WithCharts(renderer contracts.ChartRenderer, notifier contracts.Notifier) *Reporter {
	r.renderer = renderer
	r.notifier = notifier
	return r
}

// WithStore sets where reports are kept
func (r *Reporter) WithStore(store contracts.ReportStore) *Reporter {
	r.store = store
	return r
}

// WithSaver enables database persistence
func (r *Reporter) WithSaver(saver RunSaver) *Reporter {
	r.saver = saver
	return r
}

// Publish builds the RunReport, renders the sampled charts, prints and stores it
func (r *Reporter) Publish(ctx context.Context, in RunInput) (*contracts.RunReport, error) {
	rep := &contracts.RunReport{
		RunID:      in.RunID,
		Source:     in.Source,
		ConfigHash: in.ConfigHash,
		StartedAt:  in.StartedAt,
		FinishedAt: in.FinishedAt,
		Failures:   in.Failures,
	}

	bySymbol := make(map[string]contracts.CompanyOutcome, len(in.Outcomes))
	for _, o := range in.Outcomes {
		rep.Results = append(rep.Results, contracts.NewResultRecord(o))
		bySymbol[o.Symbol] = o
	}
	rep.Summary = Summarize(rep.Results, in.Failures, len(in.Symbols))

	if r.opts.Visualize && r.renderer != nil {
		rep.Charts = r.renderCharts(ctx, in.RunID, in.Symbols, bySymbol)
	}

	if r.out != nil {
		if err := r.print(rep); err != nil {
			return rep, fmt.Errorf("print report: %w", err)
		}
	}

	if r.store != nil {
		if err := r.store.Save(ctx, rep); err != nil {
			return rep, fmt.Errorf("store report: %w", err)
		}
	}
	if r.saver != nil {
		if err := r.saver.SaveRun(ctx, rep); err != nil {
			return rep, fmt.Errorf("persist report: %w", err)
		}
	}

	r.log.Info().
		Str("run_id", rep.RunID).
		Int("companies", rep.Summary.Companies).
		Int("succeeded", rep.Summary.Succeeded).
		Int("failed", rep.Summary.Failed).
		Int("charts", len(rep.Charts)).
		Msg("report published")

	return rep, nil
}

// renderCharts plots each sampled company that has test predictions
func (r *Reporter) renderCharts(ctx context.Context, runID string, symbols []string, bySymbol map[string]contracts.CompanyOutcome) map[string]string {
	charts := make(map[string]string)
	for _, symbol := range SampleCompanies(symbols, r.opts.SampleSize, r.opts.SampleSeed) {
		o, ok := bySymbol[symbol]
		if !ok || len(o.TestPred) == 0 {
			r.log.Warn().Str("symbol", symbol).Msg("sampled company has no predictions, chart skipped")
			continue
		}

		if r.notifier != nil {
			r.notifier.Notify(ctx, runID, symbol)
		}
		path, err := r.renderer.Render(ctx, contracts.ChartSeries{
			RunID:     runID,
			Symbol:    symbol,
			Actual:    o.TestActual,
			Predicted: o.TestPred,
		})
		if err != nil {
			r.log.Warn().Err(err).Str("symbol", symbol).Msg("chart failed")
			continue
		}
		charts[symbol] = filepath.Base(path)
	}

	if w, ok := r.notifier.(waiter); ok {
		w.Wait()
	}
	return charts
}

func (r *Reporter) print(rep *contracts.RunReport) error {
	if err := WriteTable(r.out, rep.Results); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	if err := WriteSummary(r.out, rep.Summary); err != nil {
		return err
	}
	if len(rep.Failures) > 0 {
		fmt.Fprintln(r.out)
		return WriteFailures(r.out, rep.Failures)
	}
	return nil
}
