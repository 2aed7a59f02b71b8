package mlp

import "math"

// Param is a flat view of a trainable tensor and its gradient
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}

// Adam owns the first and second moment estimates for a fixed parameter list
type Adam struct {
	lr, beta1, beta2, eps float64

	t int
	m [][]float64
	v [][]float64
}

// NewAdam allocates moment state shaped like params
func NewAdam(params []Param, lr, beta1, beta2, eps float64) *Adam {
	a := &Adam{lr: lr, beta1: beta1, beta2: beta2, eps: eps}
	for _, p := range params {
		a.m = append(a.m, make([]float64, len(p.Value)))
		a.v = append(a.v, make([]float64, len(p.Value)))
	}
	return a
}

// Step applies one bias-corrected update in place
func (a *Adam) Step(params []Param) {
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for k, p := range params {
		m, v := a.m[k], a.v[k]
		for i, g := range p.Grad {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			p.Value[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// Steps returns the number of updates applied
func (a *Adam) Steps() int {
	return a.t
}
