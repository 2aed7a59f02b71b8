package mlp

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/contracts"
)

// TrainConfig holds optimizer and loop settings
type TrainConfig struct {
	LearningRate float64
	BatchSize    int
	Epochs       int
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

// DefaultTrainConfig returns lr 0.001, batch 64, 50 epochs and standard Adam betas
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		LearningRate: 0.001,
		BatchSize:    64,
		Epochs:       50,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Validate checks loop settings
func (c TrainConfig) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive: %v", c.LearningRate)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive: %d", c.BatchSize)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive: %d", c.Epochs)
	}
	if c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1 {
		return fmt.Errorf("adam betas must be in [0,1): %v, %v", c.Beta1, c.Beta2)
	}
	return nil
}

// TrainStats summarizes one training run
type TrainStats struct {
	Epochs    int
	Steps     int
	Losses    []float64 // mean batch MSE per epoch
	FinalLoss float64
	Duration  time.Duration
}

// Trainer runs mini-batch Adam on MSE
type Trainer struct {
	cfg TrainConfig
	log zerolog.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(cfg TrainConfig, log zerolog.Logger) *Trainer {
	return &Trainer{
		cfg: cfg,
		log: log.With().Str("component", "mlp.trainer").Logger(),
	}
}

// Config returns the trainer settings
func (t *Trainer) Config() TrainConfig {
	return t.cfg
}

// Train fits net on (X, y) in place.
// Rows are reshuffled every epoch with rng; the last batch may be partial.
// A non-finite epoch loss stops training with *contracts.NumericError.
func (t *Trainer) Train(ctx context.Context, net *Network, X *mat.Dense, y []float64, rng *rand.Rand) (TrainStats, error) {
	var stats TrainStats
	if err := t.cfg.Validate(); err != nil {
		return stats, err
	}

	n, f := X.Dims()
	if n != len(y) {
		return stats, fmt.Errorf("feature rows %d != label rows %d", n, len(y))
	}
	if f != net.InputDim() {
		return stats, fmt.Errorf("feature width %d != network input %d", f, net.InputDim())
	}

	start := time.Now()
	params := net.Params()
	opt := NewAdam(params, t.cfg.LearningRate, t.cfg.Beta1, t.cfg.Beta2, t.cfg.Epsilon)

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		perm := rng.Perm(n)
		var sum float64
		for lo := 0; lo < n; lo += t.cfg.BatchSize {
			hi := lo + t.cfg.BatchSize
			if hi > n {
				hi = n
			}
			xb, yb := gather(X, y, perm[lo:hi])

			out := net.Forward(xb, ModeTrain)
			loss, grad := mseGrad(out, yb)
			net.Backward(grad)
			opt.Step(params)

			sum += loss * float64(hi-lo)
		}

		epochLoss := sum / float64(n)
		stats.Losses = append(stats.Losses, epochLoss)
		stats.Epochs = epoch
		stats.FinalLoss = epochLoss

		t.log.Debug().Int("epoch", epoch).Float64("loss", epochLoss).Msg("epoch done")

		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			stats.Steps = opt.Steps()
			stats.Duration = time.Since(start)
			return stats, &contracts.NumericError{Stage: fmt.Sprintf("train epoch %d", epoch)}
		}
	}

	stats.Steps = opt.Steps()
	stats.Duration = time.Since(start)
	return stats, nil
}

// gather copies the rows in idx into a batch
func gather(X *mat.Dense, y []float64, idx []int) (*mat.Dense, []float64) {
	_, f := X.Dims()
	xb := mat.NewDense(len(idx), f, nil)
	yb := make([]float64, len(idx))
	for i, r := range idx {
		xb.SetRow(i, X.RawRowView(r))
		yb[i] = y[r]
	}
	return xb, yb
}

// mseGrad returns mean((out-y)²) and its gradient 2(out-y)/B
func mseGrad(out *mat.Dense, y []float64) (float64, *mat.Dense) {
	b := len(y)
	grad := mat.NewDense(b, 1, nil)
	var loss float64
	for i := 0; i < b; i++ {
		d := out.At(i, 0) - y[i]
		loss += d * d
		grad.Set(i, 0, 2*d/float64(b))
	}
	return loss / float64(b), grad
}
