package mlp

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Mode selects training or inference behavior
type Mode int

const (
	ModeEval Mode = iota
	ModeTrain
)

// Config describes the network shape
type Config struct {
	Hidden1 int
	Hidden2 int
	Dropout float64
}

// DefaultConfig returns the 64 → 32 → 1 shape with 0.2 dropout
func DefaultConfig() Config {
	return Config{Hidden1: 64, Hidden2: 32, Dropout: 0.2}
}

// Validate checks the network shape
func (c Config) Validate() error {
	if c.Hidden1 < 1 || c.Hidden2 < 1 {
		return fmt.Errorf("hidden sizes must be positive: %d, %d", c.Hidden1, c.Hidden2)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0,1): %v", c.Dropout)
	}
	return nil
}

// Network is linear → relu → dropout → linear → relu → dropout → linear.
// One Network belongs to one company and is never shared.
type Network struct {
	cfg Config
	rng *rand.Rand

	l1, l2, l3 *Dense

	// forward cache for Backward
	z1, z2       *mat.Dense
	mask1, mask2 *mat.Dense
}

// NewNetwork builds a freshly initialized network
func NewNetwork(inputDim int, cfg Config, rng *rand.Rand) (*Network, error) {
	if inputDim < 1 {
		return nil, fmt.Errorf("input dimension must be positive: %d", inputDim)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Network{
		cfg: cfg,
		rng: rng,
		l1:  newDense(inputDim, cfg.Hidden1, rng),
		l2:  newDense(cfg.Hidden1, cfg.Hidden2, rng),
		l3:  newDense(cfg.Hidden2, 1, rng),
	}, nil
}

// InputDim returns the expected feature count
func (n *Network) InputDim() int {
	in, _ := n.l1.Dims()
	return in
}

// Forward runs a batch and returns a B×1 output
func (n *Network) Forward(x *mat.Dense, mode Mode) *mat.Dense {
	n.z1 = n.l1.Forward(x)
	h1 := relu(n.z1)
	n.mask1 = n.dropout(h1, mode)

	n.z2 = n.l2.Forward(h1)
	h2 := relu(n.z2)
	n.mask2 = n.dropout(h2, mode)

	return n.l3.Forward(h2)
}

// dropout applies an inverted-dropout mask in place and returns it; nil in eval mode
func (n *Network) dropout(h *mat.Dense, mode Mode) *mat.Dense {
	if mode != ModeTrain || n.cfg.Dropout == 0 {
		return nil
	}
	r, c := h.Dims()
	mask := dropoutMask(r, c, n.cfg.Dropout, n.rng)
	h.MulElem(h, mask)
	return mask
}

// Backward propagates ∂L/∂out through the cached forward pass
func (n *Network) Backward(gradOut *mat.Dense) {
	g := n.l3.Backward(gradOut)
	if n.mask2 != nil {
		g.MulElem(g, n.mask2)
	}
	g = reluBackward(g, n.z2)

	g = n.l2.Backward(g)
	if n.mask1 != nil {
		g.MulElem(g, n.mask1)
	}
	g = reluBackward(g, n.z1)

	n.l1.Backward(g)
}

// Params returns every trainable parameter with its gradient buffer
func (n *Network) Params() []Param {
	var ps []Param
	ps = append(ps, n.l1.params("fc1")...)
	ps = append(ps, n.l2.params("fc2")...)
	ps = append(ps, n.l3.params("fc3")...)
	return ps
}

// Predict runs inference (dropout off) on every row of x
func (n *Network) Predict(x mat.Matrix) []float64 {
	out := n.Forward(mat.DenseCopyOf(x), ModeEval)
	rows, _ := out.Dims()
	pred := make([]float64, rows)
	for i := range pred {
		pred[i] = out.At(i, 0)
	}
	return pred
}
