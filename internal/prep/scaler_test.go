package prep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMinMaxScaler_TrainRange(t *testing.T) {
	train := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		5, 50,
	})
	s := FitMinMax(train)
	assert.Equal(t, []float64{1, 10}, s.Min)
	assert.Equal(t, []float64{5, 50}, s.Max)

	scaled := s.Transform(train)
	r, c := scaled.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := scaled.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	assert.Equal(t, 0.0, scaled.At(0, 0))
	assert.Equal(t, 1.0, scaled.At(3, 1))
}

func TestMinMaxScaler_NoClipping(t *testing.T) {
	s := FitMinMax(mat.NewDense(2, 1, []float64{0, 10}))
	test := s.Transform(mat.NewDense(2, 1, []float64{-5, 20}))
	assert.Equal(t, -0.5, test.At(0, 0))
	assert.Equal(t, 2.0, test.At(1, 0))
}

func TestMinMaxScaler_RoundTrip(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{
		100.5, -3,
		250.25, 7,
		180, 0.5,
	})
	s := FitMinMax(train)
	back := s.InverseTransform(s.Transform(train))
	assert.True(t, mat.EqualApprox(train, back, 1e-9))

	v := []float64{984.72, 941.38, 1002.1}
	vs := FitMinMaxVector(v)
	assert.InDeltaSlice(t, v, vs.InverseVector(vs.TransformVector(v)), 1e-9)
}

func TestMinMaxScaler_ZeroRange(t *testing.T) {
	s := FitMinMax(mat.NewDense(3, 1, []float64{7, 7, 7}))
	out := s.Transform(mat.NewDense(2, 1, []float64{7, 9}))
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.0, out.At(1, 0))

	back := s.InverseTransform(out)
	assert.Equal(t, 7.0, back.At(1, 0))

	vs := FitMinMaxVector([]float64{3, 3})
	assert.Equal(t, []float64{0, 0}, vs.TransformVector([]float64{3, 3}))
	assert.Equal(t, []float64{3}, vs.InverseVector([]float64{0.4}))
}

func TestScalePartition_NoLeakage(t *testing.T) {
	X, y := linear(100)
	p, err := PartitionRows(X, y, DefaultSplitRatios())
	require.NoError(t, err)

	ds := ScalePartition(p)

	// fitted on train rows 0..71 only
	assert.Equal(t, []float64{0, 0}, ds.Features.Min)
	assert.Equal(t, []float64{71, 142}, ds.Features.Max)
	assert.Equal(t, []float64{71}, ds.Label.Max)

	// test rows lie beyond the train range and stay unclipped
	assert.Greater(t, ds.Scaled.Test.X.At(0, 0), 1.0)
	assert.Greater(t, ds.Scaled.Test.Y[0], 1.0)

	// raw partition untouched
	assert.Equal(t, 80.0, p.Test.Y[0])
	assert.Equal(t, p.Test.Start, ds.Scaled.Test.Start)
}
