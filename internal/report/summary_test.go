package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/vwapcast/internal/contracts"
)

func TestDescribe(t *testing.T) {
	cs := Describe([]float64{4, 1, math.NaN(), 3, 2, math.Inf(1)})

	assert.Equal(t, 4, cs.Count)
	assert.InDelta(t, 2.5, float64(cs.Mean), 1e-12)
	assert.InDelta(t, 1.2909944487358056, float64(cs.Std), 1e-12)
	assert.Equal(t, contracts.Metric(1), cs.Min)
	assert.InDelta(t, 1.75, float64(cs.P25), 1e-12)
	assert.InDelta(t, 2.5, float64(cs.P50), 1e-12)
	assert.InDelta(t, 3.25, float64(cs.P75), 1e-12)
	assert.Equal(t, contracts.Metric(4), cs.Max)
}

func TestDescribe_Degenerate(t *testing.T) {
	empty := Describe(nil)
	assert.Equal(t, 0, empty.Count)
	assert.False(t, empty.Mean.IsFinite())
	assert.False(t, empty.Max.IsFinite())

	one := Describe([]float64{0.3})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, contracts.Metric(0.3), one.Mean)
	assert.False(t, one.Std.IsFinite())
	assert.Equal(t, contracts.Metric(0.3), one.P75)
}

func TestCalculatePercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{25, 20},
		{50, 30},
		{90, 46},
		{100, 50},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, calculatePercentile(sorted, tt.p), 1e-12, "p=%v", tt.p)
	}
	assert.True(t, math.IsNaN(calculatePercentile(nil, 50)))
}

func TestSummarize(t *testing.T) {
	results := []contracts.ResultRecord{
		{Symbol: "A", TrainRMSE: 0.1, TestRMSE: 0.2},
		{Symbol: "B", TrainRMSE: 0.3, TestRMSE: 0.4},
		{Symbol: "C", TrainRMSE: contracts.NaN(), TestRMSE: contracts.NaN(), Numeric: true},
	}
	failures := []contracts.Failure{
		{Symbol: "C", Kind: contracts.FailureNumeric},
		{Symbol: "D", Kind: contracts.FailureInsufficientData},
	}

	s := Summarize(results, failures, 4)
	assert.Equal(t, 4, s.Companies)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 2, s.Train.Count)
	assert.InDelta(t, 0.3, float64(s.Test.Mean), 1e-12)
	assert.Equal(t, 1, s.FailuresByKind[contracts.FailureNumeric])
	assert.Equal(t, 1, s.FailuresByKind[contracts.FailureInsufficientData])

	clean := Summarize(results[:2], nil, 2)
	assert.Nil(t, clean.FailuresByKind)
}
