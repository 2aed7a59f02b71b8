package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Metric is a float that serializes non-finite values as JSON null
type Metric float64

// NaN returns the sentinel Metric
func NaN() Metric {
	return Metric(math.NaN())
}

// IsFinite reports whether the metric is usable in aggregates
func (m Metric) IsFinite() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.IsFinite() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(m), 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

// CompanyOutcome is the full output of one company pipeline run
type CompanyOutcome struct {
	Symbol     string
	Rows       int
	TrainRows  int
	ValRows    int
	TestRows   int
	TrainRMSE  float64 // scaled label units
	TestRMSE   float64 // scaled label units
	FinalLoss  float64
	Epochs     int
	Duration   time.Duration
	TestActual []float64 // original VWAP units
	TestPred   []float64 // original VWAP units
}

// ResultRecord is one row of the results table
type ResultRecord struct {
	Symbol    string `json:"symbol"`
	TrainRMSE Metric `json:"train_rmse"`
	TestRMSE  Metric `json:"test_rmse"`
	Rows      int    `json:"rows"`
	TrainRows int    `json:"train_rows"`
	ValRows   int    `json:"val_rows"`
	TestRows  int    `json:"test_rows"`
	Numeric   bool   `json:"numeric_failure,omitempty"` // RMSEs are NaN sentinels
}

// NewResultRecord builds a ResultRecord from an outcome.
// Non-finite RMSEs are replaced by the NaN sentinel and flagged.
func NewResultRecord(o CompanyOutcome) ResultRecord {
	r := ResultRecord{
		Symbol:    o.Symbol,
		TrainRMSE: Metric(o.TrainRMSE),
		TestRMSE:  Metric(o.TestRMSE),
		Rows:      o.Rows,
		TrainRows: o.TrainRows,
		ValRows:   o.ValRows,
		TestRows:  o.TestRows,
	}
	if !r.TrainRMSE.IsFinite() || !r.TestRMSE.IsFinite() {
		r.TrainRMSE = NaN()
		r.TestRMSE = NaN()
		r.Numeric = true
	}
	return r
}

// Failure records why a company produced no usable result
type Failure struct {
	Symbol  string      `json:"symbol"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ColumnStats mirrors a describe() row set for one metric column
type ColumnStats struct {
	Count int    `json:"count"`
	Mean  Metric `json:"mean"`
	Std   Metric `json:"std"`
	Min   Metric `json:"min"`
	P25   Metric `json:"p25"`
	P50   Metric `json:"p50"`
	P75   Metric `json:"p75"`
	Max   Metric `json:"max"`
}

// Summary aggregates a run
type Summary struct {
	Train          ColumnStats         `json:"train_rmse"`
	Test           ColumnStats         `json:"test_rmse"`
	Companies      int                 `json:"companies"`
	Succeeded      int                 `json:"succeeded"`
	Failed         int                 `json:"failed"`
	FailuresByKind map[FailureKind]int `json:"failures_by_kind,omitempty"`
}

// RunReport is the unit stored, cached, served and persisted
type RunReport struct {
	RunID      string            `json:"run_id"`
	Source     string            `json:"source"`
	ConfigHash string            `json:"config_hash"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []ResultRecord    `json:"results"`
	Failures   []Failure         `json:"failures,omitempty"`
	Summary    Summary           `json:"summary"`
	Charts     map[string]string `json:"charts,omitempty"` // symbol -> chart file
}

// ChartSeries is the input of a ChartRenderer
type ChartSeries struct {
	RunID     string
	Symbol    string
	Actual    []float64
	Predicted []float64
}
