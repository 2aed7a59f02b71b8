// Package mlp implements the small feed-forward regression network and its trainer.
package mlp

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer computing x·W + b
type Dense struct {
	W *mat.Dense // in × out
	B []float64  // out

	dW *mat.Dense
	dB []float64

	input *mat.Dense // cached by Forward for Backward
}

// newDense initializes weights and biases from U(-1/√in, 1/√in)
func newDense(in, out int, rng *rand.Rand) *Dense {
	bound := 1 / math.Sqrt(float64(in))
	uniform := func() float64 { return (rng.Float64()*2 - 1) * bound }

	w := make([]float64, in*out)
	for i := range w {
		w[i] = uniform()
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = uniform()
	}

	return &Dense{
		W:  mat.NewDense(in, out, w),
		B:  b,
		dW: mat.NewDense(in, out, nil),
		dB: make([]float64, out),
	}
}

// Dims returns (in, out)
func (l *Dense) Dims() (int, int) {
	return l.W.Dims()
}

// Forward computes x·W + b for a batch
func (l *Dense) Forward(x *mat.Dense) *mat.Dense {
	l.input = x
	rows, _ := x.Dims()
	_, out := l.W.Dims()

	z := mat.NewDense(rows, out, nil)
	z.Mul(x, l.W)
	z.Apply(func(_, j int, v float64) float64 {
		return v + l.B[j]
	}, z)
	return z
}

// Backward stores parameter gradients for grad = ∂L/∂z and returns ∂L/∂x.
// Gradients are overwritten, never accumulated.
func (l *Dense) Backward(grad *mat.Dense) *mat.Dense {
	l.dW.Mul(l.input.T(), grad)

	rows, out := grad.Dims()
	for j := 0; j < out; j++ {
		l.dB[j] = 0
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < out; j++ {
			l.dB[j] += grad.At(i, j)
		}
	}

	in, _ := l.W.Dims()
	gin := mat.NewDense(rows, in, nil)
	gin.Mul(grad, l.W.T())
	return gin
}

// params exposes the raw weight/bias storage paired with its gradients
func (l *Dense) params(name string) []Param {
	return []Param{
		{Name: name + ".weight", Value: l.W.RawMatrix().Data, Grad: l.dW.RawMatrix().Data},
		{Name: name + ".bias", Value: l.B, Grad: l.dB},
	}
}

// relu applies max(0, z) into a new matrix. NaN propagates.
func relu(z *mat.Dense) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		if v <= 0 {
			return 0
		}
		return v
	}, z)
	return out
}

// reluBackward zeroes grad where the pre-activation z was not positive
func reluBackward(grad, z *mat.Dense) *mat.Dense {
	r, c := grad.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if z.At(i, j) <= 0 {
			return 0
		}
		return v
	}, grad)
	return out
}

// dropoutMask draws an inverted-dropout mask: 0 with probability p, else 1/(1-p)
func dropoutMask(rows, cols int, p float64, rng *rand.Rand) *mat.Dense {
	keep := 1 / (1 - p)
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Float64() >= p {
			data[i] = keep
		}
	}
	return mat.NewDense(rows, cols, data)
}
