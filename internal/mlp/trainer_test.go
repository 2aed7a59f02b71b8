package mlp

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/contracts"
)

func linearData(n int) (*mat.Dense, []float64) {
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i) / float64(n-1)
		X.Set(i, 0, v)
		X.Set(i, 1, v)
		y[i] = v
	}
	return X, y
}

func TestTrainConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultTrainConfig().Validate())

	bad := []TrainConfig{
		{LearningRate: 0, BatchSize: 1, Epochs: 1},
		{LearningRate: 0.1, BatchSize: 0, Epochs: 1},
		{LearningRate: 0.1, BatchSize: 1, Epochs: 0},
		{LearningRate: 0.1, BatchSize: 1, Epochs: 1, Beta1: 1},
	}
	for _, cfg := range bad {
		assert.Error(t, cfg.Validate(), "%+v", cfg)
	}
}

func TestTrainer_LearnsLinearSignal(t *testing.T) {
	X, y := linearData(80)
	rng := rand.New(rand.NewSource(42))
	net, err := NewNetwork(2, DefaultConfig(), rng)
	require.NoError(t, err)

	cfg := DefaultTrainConfig()
	cfg.LearningRate = 0.01
	cfg.Epochs = 200
	cfg.BatchSize = 16

	stats, err := NewTrainer(cfg, zerolog.Nop()).Train(context.Background(), net, X, y, rng)
	require.NoError(t, err)

	assert.Equal(t, 200, stats.Epochs)
	assert.Equal(t, 200*5, stats.Steps)
	assert.Len(t, stats.Losses, 200)
	assert.Less(t, stats.FinalLoss, stats.Losses[0])

	pred := net.Predict(X)
	var mse float64
	for i := range y {
		d := pred[i] - y[i]
		mse += d * d
	}
	assert.Less(t, math.Sqrt(mse/float64(len(y))), 0.1)
}

func TestTrainer_PartialLastBatch(t *testing.T) {
	X, y := linearData(10)
	rng := rand.New(rand.NewSource(1))
	net, err := NewNetwork(2, DefaultConfig(), rng)
	require.NoError(t, err)

	cfg := DefaultTrainConfig()
	cfg.BatchSize = 4
	cfg.Epochs = 3

	stats, err := NewTrainer(cfg, zerolog.Nop()).Train(context.Background(), net, X, y, rng)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Steps) // batches of 4, 4, 2
}

func TestTrainer_Deterministic(t *testing.T) {
	X, y := linearData(30)

	run := func() []float64 {
		rng := rand.New(rand.NewSource(99))
		net, err := NewNetwork(2, DefaultConfig(), rng)
		require.NoError(t, err)
		cfg := DefaultTrainConfig()
		cfg.Epochs = 5
		_, err = NewTrainer(cfg, zerolog.Nop()).Train(context.Background(), net, X, y, rng)
		require.NoError(t, err)
		return net.Predict(X)
	}

	assert.Equal(t, run(), run())
}

func TestTrainer_Errors(t *testing.T) {
	X, y := linearData(10)
	rng := rand.New(rand.NewSource(1))
	net, err := NewNetwork(2, DefaultConfig(), rng)
	require.NoError(t, err)
	trainer := NewTrainer(DefaultTrainConfig(), zerolog.Nop())

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := trainer.Train(ctx, net, X, y, rng)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("label mismatch", func(t *testing.T) {
		_, err := trainer.Train(context.Background(), net, X, y[:5], rng)
		assert.Error(t, err)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := trainer.Train(context.Background(), net, mat.NewDense(10, 3, nil), y, rng)
		assert.Error(t, err)
	})

	t.Run("non-finite input", func(t *testing.T) {
		bad := mat.DenseCopyOf(X)
		bad.Set(0, 0, math.NaN())
		fresh, err := NewNetwork(2, DefaultConfig(), rng)
		require.NoError(t, err)

		_, err = trainer.Train(context.Background(), fresh, bad, y, rng)
		var numeric *contracts.NumericError
		assert.True(t, errors.As(err, &numeric))
	})
}
