package forecast

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/mlp"
	"github.com/wonny/vwapcast/internal/prep"
)

// Settings is everything one company pipeline needs
type Settings struct {
	Columns prep.ColumnSet
	Split   prep.SplitRatios
	Model   mlp.Config
	Train   mlp.TrainConfig
	Seed    int64
}

// DefaultSettings returns the stock pipeline configuration
func DefaultSettings() Settings {
	return Settings{
		Columns: prep.DefaultColumnSet(),
		Split:   prep.DefaultSplitRatios(),
		Model:   mlp.DefaultConfig(),
		Train:   mlp.DefaultTrainConfig(),
		Seed:    42,
	}
}

// Runner executes the per-company pipeline:
// extract → features/label → partition → scale → train → evaluate
// ⭐ SSOT: 종목 단위 학습/평가는 여기서만
type Runner struct {
	settings Settings
	trainer  *mlp.Trainer
	log      zerolog.Logger
}

// NewRunner creates a new runner
func NewRunner(settings Settings, log zerolog.Logger) *Runner {
	return &Runner{
		settings: settings,
		trainer:  mlp.NewTrainer(settings.Train, log),
		log:      log.With().Str("component", "forecast.runner").Logger(),
	}
}

// Settings returns the runner configuration
func (r *Runner) Settings() Settings {
	return r.settings
}

// CompanySeed derives a per-company seed so results do not depend on run order
func CompanySeed(base int64, symbol string) int64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return base + int64(h.Sum32())
}

// Run extracts symbol from records and runs its pipeline
func (r *Runner) Run(ctx context.Context, records []contracts.Record, symbol string) (contracts.CompanyOutcome, error) {
	series, err := prep.ExtractCompany(records, symbol)
	if err != nil {
		return contracts.CompanyOutcome{Symbol: symbol}, err
	}
	return r.RunSeries(ctx, series)
}

// RunSeries trains a fresh network on one company and scores it.
// On *contracts.NumericError the returned outcome still carries row counts and NaN scores.
func (r *Runner) RunSeries(ctx context.Context, series contracts.CompanySeries) (contracts.CompanyOutcome, error) {
	start := time.Now()
	symbol := series.Symbol
	out := contracts.CompanyOutcome{Symbol: symbol, Rows: series.Len()}

	X, y, err := prep.SplitFeatures(series, r.settings.Columns)
	if err != nil {
		return out, withSymbol(err, symbol)
	}

	part, err := prep.PartitionRows(X, y, r.settings.Split)
	if err != nil {
		return out, withSymbol(err, symbol)
	}
	out.TrainRows = part.Train.Len()
	out.ValRows = part.Validation.Len()
	out.TestRows = part.Test.Len()

	ds := prep.ScalePartition(part)
	if !finiteMatrix(ds.Scaled.Train.X) || !finiteVector(ds.Scaled.Train.Y) {
		return numericOutcome(out, start), &contracts.NumericError{Symbol: symbol, Stage: "scale"}
	}

	rng := rand.New(rand.NewSource(CompanySeed(r.settings.Seed, symbol)))
	_, features := X.Dims()
	net, err := mlp.NewNetwork(features, r.settings.Model, rng)
	if err != nil {
		return out, fmt.Errorf("build network for %s: %w", symbol, err)
	}

	stats, err := r.trainer.Train(ctx, net, ds.Scaled.Train.X, ds.Scaled.Train.Y, rng)
	out.Epochs = stats.Epochs
	out.FinalLoss = stats.FinalLoss
	if err != nil {
		var numeric *contracts.NumericError
		if errors.As(err, &numeric) {
			numeric.Symbol = symbol
			return numericOutcome(out, start), err
		}
		return out, fmt.Errorf("train %s: %w", symbol, err)
	}

	scores := Evaluate(net, ds.Scaled)
	out.TrainRMSE = scores.Train
	out.TestRMSE = scores.Test
	out.TestActual = append([]float64(nil), part.Test.Y...)
	out.TestPred = ds.Label.InverseVector(scores.TestPred)
	out.Duration = time.Since(start)

	if !scores.Finite() {
		return numericOutcome(out, start), &contracts.NumericError{Symbol: symbol, Stage: "evaluate"}
	}

	r.log.Info().
		Str("symbol", symbol).
		Int("rows", out.Rows).
		Int("train_rows", out.TrainRows).
		Int("test_rows", out.TestRows).
		Float64("train_rmse", out.TrainRMSE).
		Float64("test_rmse", out.TestRMSE).
		Dur("duration", out.Duration).
		Msg("company evaluated")

	return out, nil
}

// withSymbol fills the symbol on per-company errors raised below the runner
func withSymbol(err error, symbol string) error {
	var insufficient *contracts.InsufficientDataError
	if errors.As(err, &insufficient) {
		insufficient.Symbol = symbol
		return err
	}
	var empty *contracts.EmptySeriesError
	if errors.As(err, &empty) {
		empty.Symbol = symbol
		return err
	}
	return fmt.Errorf("%s: %w", symbol, err)
}

func numericOutcome(out contracts.CompanyOutcome, start time.Time) contracts.CompanyOutcome {
	nan := float64(contracts.NaN())
	out.TrainRMSE = nan
	out.TestRMSE = nan
	out.TestActual = nil
	out.TestPred = nil
	out.Duration = time.Since(start)
	return out
}

func finiteMatrix(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		if !finiteVector(m.RawRowView(i)[:c]) {
			return false
		}
	}
	return true
}

func finiteVector(v []float64) bool {
	for _, x := range v {
		if !isFinite(x) {
			return false
		}
	}
	return true
}
