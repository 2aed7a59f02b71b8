package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/prep"
)

// constantModel always predicts the same value
type constantModel float64

func (c constantModel) Predict(x mat.Matrix) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = float64(c)
	}
	return out
}

func TestRMSE(t *testing.T) {
	tests := []struct {
		name   string
		pred   []float64
		actual []float64
		want   float64
	}{
		{name: "perfect", pred: []float64{1, 2, 3}, actual: []float64{1, 2, 3}, want: 0},
		{name: "constant offset", pred: []float64{2, 3, 4}, actual: []float64{1, 2, 3}, want: 1},
		{name: "mixed", pred: []float64{0, 0}, actual: []float64{3, 4}, want: math.Sqrt(12.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMSE(tt.pred, tt.actual)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}

	assert.True(t, math.IsNaN(RMSE(nil, nil)))
	assert.True(t, math.IsNaN(RMSE([]float64{1}, []float64{1, 2})))
	assert.True(t, math.IsNaN(RMSE([]float64{math.NaN()}, []float64{1})))
}

func TestEvaluate_ConstantFit(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := range y {
		X.Set(i, 0, float64(i))
		y[i] = 0.5
	}
	part, err := prep.PartitionRows(X, y, prep.DefaultSplitRatios())
	require.NoError(t, err)

	scores := Evaluate(constantModel(0.5), part)
	assert.InDelta(t, 0, scores.Train, 1e-12)
	assert.InDelta(t, 0, scores.Test, 1e-12)
	assert.True(t, scores.Finite())
	assert.Len(t, scores.TestPred, part.Test.Len())

	scores = Evaluate(constantModel(math.NaN()), part)
	assert.False(t, scores.Finite())
}
