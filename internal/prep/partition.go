package prep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/contracts"
)

// ceilEps absorbs float noise in ratio*n before rounding up
const ceilEps = 1e-9

// SplitRatios configures the positional split
type SplitRatios struct {
	Test       float64 // share of all rows, taken from the end
	Validation float64 // share of the remaining rows, taken just before Test
	MinRows    int
}

// DefaultSplitRatios returns 20% test, 10% validation, 10 rows minimum
func DefaultSplitRatios() SplitRatios {
	return SplitRatios{Test: 0.2, Validation: 0.1, MinRows: 10}
}

// Segment is a contiguous row range [Start, End) with its data
type Segment struct {
	X     *mat.Dense
	Y     []float64
	Start int
	End   int
}

// Len returns the number of rows
func (s Segment) Len() int {
	return s.End - s.Start
}

// Partition holds the three disjoint segments in row order: Train, Validation, Test
type Partition struct {
	Train      Segment
	Validation Segment
	Test       Segment
}

// Sizes computes segment sizes for n rows without touching data
func Sizes(n int, r SplitRatios) (train, val, test int) {
	test = int(math.Ceil(r.Test*float64(n) - ceilEps))
	val = int(math.Ceil(r.Validation*float64(n-test) - ceilEps))
	train = n - test - val
	return train, val, test
}

// PartitionRows slices X and y by position with no shuffling.
// Returns *contracts.InsufficientDataError when a segment would be empty.
func PartitionRows(X *mat.Dense, y []float64, r SplitRatios) (Partition, error) {
	n, _ := X.Dims()
	if n != len(y) {
		return Partition{}, fmt.Errorf("feature rows %d != label rows %d", n, len(y))
	}
	if r.Test <= 0 || r.Test >= 1 || r.Validation <= 0 || r.Validation >= 1 {
		return Partition{}, fmt.Errorf("split ratios must be in (0,1): test=%v validation=%v", r.Test, r.Validation)
	}
	if n < r.MinRows {
		return Partition{}, &contracts.InsufficientDataError{Rows: n, MinRows: r.MinRows}
	}

	nTrain, nVal, nTest := Sizes(n, r)
	if nTrain < 1 || nVal < 1 || nTest < 1 {
		return Partition{}, &contracts.InsufficientDataError{Rows: n, MinRows: r.MinRows}
	}

	return Partition{
		Train:      segment(X, y, 0, nTrain),
		Validation: segment(X, y, nTrain, nTrain+nVal),
		Test:       segment(X, y, nTrain+nVal, n),
	}, nil
}

func segment(X *mat.Dense, y []float64, start, end int) Segment {
	_, c := X.Dims()
	x := mat.DenseCopyOf(X.Slice(start, end, 0, c))
	ys := make([]float64, end-start)
	copy(ys, y[start:end])
	return Segment{X: x, Y: ys, Start: start, End: end}
}
