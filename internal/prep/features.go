package prep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/contracts"
)

// DefaultLabel is the regression target
const DefaultLabel = contracts.ColVWAP

// DefaultExclude lists the columns never used as features
var DefaultExclude = []contracts.Column{
	contracts.ColDate, contracts.ColSymbol, contracts.ColSeries, contracts.ColPrevClose,
	contracts.ColVWAP, contracts.ColVolume, contracts.ColTurnover, contracts.ColTrades,
	contracts.ColDeliverableVolume, contracts.ColPctDeliverable,
}

// ColumnSet selects the label and the ordered feature columns
type ColumnSet struct {
	Label    contracts.Column
	Features []contracts.Column
}

// DefaultColumnSet gives Open, High, Low, Last, Close → VWAP
func DefaultColumnSet() ColumnSet {
	cs, _ := NewColumnSet(string(DefaultLabel), columnStrings(DefaultExclude))
	return cs
}

// NewColumnSet resolves names against the schema.
// Features are the schema columns that are neither excluded nor the label, in schema order.
func NewColumnSet(label string, exclude []string) (ColumnSet, error) {
	lc, err := contracts.ParseColumn(label)
	if err != nil {
		return ColumnSet{}, fmt.Errorf("label: %w", err)
	}
	if !lc.IsNumeric() {
		return ColumnSet{}, fmt.Errorf("label %q is not numeric", label)
	}

	skip := map[contracts.Column]bool{lc: true}
	for _, name := range exclude {
		c, err := contracts.ParseColumn(name)
		if err != nil {
			return ColumnSet{}, fmt.Errorf("exclude: %w", err)
		}
		skip[c] = true
	}

	cs := ColumnSet{Label: lc}
	for _, c := range contracts.Schema {
		if skip[c] {
			continue
		}
		if !c.IsNumeric() {
			return ColumnSet{}, fmt.Errorf("feature column %q is not numeric; add it to exclude", c)
		}
		cs.Features = append(cs.Features, c)
	}
	if len(cs.Features) == 0 {
		return ColumnSet{}, fmt.Errorf("no feature columns left after exclusion")
	}
	return cs, nil
}

// SplitFeatures builds the N×F feature matrix and the aligned label vector
func SplitFeatures(series contracts.CompanySeries, cols ColumnSet) (*mat.Dense, []float64, error) {
	n := series.Len()
	if n == 0 {
		return nil, nil, &contracts.EmptySeriesError{Symbol: series.Symbol}
	}
	if len(cols.Features) == 0 {
		return nil, nil, fmt.Errorf("empty feature set")
	}

	f := len(cols.Features)
	data := make([]float64, 0, n*f)
	y := make([]float64, n)
	for i, r := range series.Records {
		for _, c := range cols.Features {
			v, ok := r.Value(c)
			if !ok {
				return nil, nil, fmt.Errorf("column %q is not numeric", c)
			}
			data = append(data, v)
		}
		y[i], _ = r.Value(cols.Label)
	}
	return mat.NewDense(n, f, data), y, nil
}

func columnStrings(cols []contracts.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}
