package prep

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinMaxScaler maps each column linearly onto [0,1] using the fitted min/max.
// Values outside the fitted range are not clipped.
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

// FitMinMax computes per-column min and max, ignoring NaN
func FitMinMax(m mat.Matrix) *MinMaxScaler {
	r, c := m.Dims()
	s := &MinMaxScaler{Min: make([]float64, c), Max: make([]float64, c)}
	for j := 0; j < c; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < r; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if math.IsInf(lo, 1) {
			lo, hi = math.NaN(), math.NaN()
		}
		s.Min[j], s.Max[j] = lo, hi
	}
	return s
}

// FitMinMaxVector fits a single-column scaler, used for the label
func FitMinMaxVector(v []float64) *MinMaxScaler {
	return FitMinMax(mat.NewDense(len(v), 1, append([]float64(nil), v...)))
}

// scale maps one value; a zero-range column maps to 0
func (s *MinMaxScaler) scale(j int, v float64) float64 {
	span := s.Max[j] - s.Min[j]
	if span == 0 {
		return 0
	}
	return (v - s.Min[j]) / span
}

func (s *MinMaxScaler) unscale(j int, v float64) float64 {
	span := s.Max[j] - s.Min[j]
	if span == 0 {
		return s.Min[j]
	}
	return v*span + s.Min[j]
}

// Transform returns a scaled copy of m
func (s *MinMaxScaler) Transform(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return s.scale(j, v)
	}, m)
	return out
}

// InverseTransform maps scaled values back to original units
func (s *MinMaxScaler) InverseTransform(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return s.unscale(j, v)
	}, m)
	return out
}

// TransformVector scales a label vector with column 0
func (s *MinMaxScaler) TransformVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = s.scale(0, x)
	}
	return out
}

// InverseVector undoes TransformVector
func (s *MinMaxScaler) InverseVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = s.unscale(0, x)
	}
	return out
}
