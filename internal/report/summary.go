// Package report turns per-company outcomes into tables, summary statistics, charts and stored run reports.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/vwapcast/internal/contracts"
)

// Describe computes count/mean/std/min/quartiles/max over finite values.
// std is the sample standard deviation (n-1); quartiles interpolate linearly.
func Describe(values []float64) contracts.ColumnStats {
	var xs []float64
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}

	cs := contracts.ColumnStats{Count: len(xs)}
	if len(xs) == 0 {
		nan := contracts.NaN()
		cs.Mean, cs.Std, cs.Min, cs.P25, cs.P50, cs.P75, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return cs
	}

	sort.Float64s(xs)
	cs.Mean = contracts.Metric(stat.Mean(xs, nil))
	cs.Std = contracts.NaN()
	if len(xs) > 1 {
		cs.Std = contracts.Metric(stat.StdDev(xs, nil))
	}
	cs.Min = contracts.Metric(xs[0])
	cs.P25 = contracts.Metric(calculatePercentile(xs, 25))
	cs.P50 = contracts.Metric(calculatePercentile(xs, 50))
	cs.P75 = contracts.Metric(calculatePercentile(xs, 75))
	cs.Max = contracts.Metric(xs[len(xs)-1])
	return cs
}

// calculatePercentile 정렬된 값의 백분위수 (선형 보간)
func calculatePercentile(sorted []float64, percentile float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * percentile / 100
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Summarize builds the run summary. Rows flagged Numeric are excluded from the statistics.
func Summarize(results []contracts.ResultRecord, failures []contracts.Failure, companies int) contracts.Summary {
	var train, test []float64
	for _, r := range results {
		if r.Numeric {
			continue
		}
		train = append(train, float64(r.TrainRMSE))
		test = append(test, float64(r.TestRMSE))
	}

	s := contracts.Summary{
		Train:     Describe(train),
		Test:      Describe(test),
		Companies: companies,
		Succeeded: len(train),
		Failed:    len(failures),
	}
	if len(failures) > 0 {
		s.FailuresByKind = make(map[contracts.FailureKind]int)
		for _, f := range failures {
			s.FailuresByKind[f.Kind]++
		}
	}
	return s
}
