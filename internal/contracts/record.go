package contracts

import (
	"fmt"
	"time"
)

// Column identifies one column of the daily stock table.
// Values are the literal CSV header names of the source data.
type Column string

const (
	ColDate              Column = "Date"
	ColSymbol            Column = "Symbol"
	ColSeries            Column = "Series"
	ColPrevClose         Column = "Prev Close"
	ColOpen              Column = "Open"
	ColHigh              Column = "High"
	ColLow               Column = "Low"
	ColLast              Column = "Last"
	ColClose             Column = "Close"
	ColVWAP              Column = "VWAP"
	ColVolume            Column = "Volume"
	ColTurnover          Column = "Turnover"
	ColTrades            Column = "Trades"
	ColDeliverableVolume Column = "Deliverable Volume"
	ColPctDeliverable    Column = "%Deliverble" // sic, as spelled in the dataset
)

// Schema lists every required column in source order
var Schema = []Column{
	ColDate, ColSymbol, ColSeries, ColPrevClose,
	ColOpen, ColHigh, ColLow, ColLast, ColClose, ColVWAP,
	ColVolume, ColTurnover, ColTrades, ColDeliverableVolume, ColPctDeliverable,
}

// NumericColumns lists the float-valued columns in source order
var NumericColumns = []Column{
	ColPrevClose, ColOpen, ColHigh, ColLow, ColLast, ColClose, ColVWAP,
	ColVolume, ColTurnover, ColTrades, ColDeliverableVolume, ColPctDeliverable,
}

// ParseColumn resolves a header name to a known Column
func ParseColumn(name string) (Column, error) {
	for _, c := range Schema {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown column %q", name)
}

// IsNumeric reports whether the column carries a float value
func (c Column) IsNumeric() bool {
	for _, n := range NumericColumns {
		if n == c {
			return true
		}
	}
	return false
}

// Record is one (company, date) row. Missing numeric cells are NaN.
type Record struct {
	Date              time.Time `json:"date"`
	Symbol            string    `json:"symbol"`
	Series            string    `json:"series"`
	PrevClose         float64   `json:"prev_close"`
	Open              float64   `json:"open"`
	High              float64   `json:"high"`
	Low               float64   `json:"low"`
	Last              float64   `json:"last"`
	Close             float64   `json:"close"`
	VWAP              float64   `json:"vwap"`
	Volume            float64   `json:"volume"`
	Turnover          float64   `json:"turnover"`
	Trades            float64   `json:"trades"`
	DeliverableVolume float64   `json:"deliverable_volume"`
	PctDeliverable    float64   `json:"pct_deliverable"`
}

// Value returns the numeric value of column c.
// ok is false for non-numeric columns.
func (r Record) Value(c Column) (v float64, ok bool) {
	switch c {
	case ColPrevClose:
		return r.PrevClose, true
	case ColOpen:
		return r.Open, true
	case ColHigh:
		return r.High, true
	case ColLow:
		return r.Low, true
	case ColLast:
		return r.Last, true
	case ColClose:
		return r.Close, true
	case ColVWAP:
		return r.VWAP, true
	case ColVolume:
		return r.Volume, true
	case ColTurnover:
		return r.Turnover, true
	case ColTrades:
		return r.Trades, true
	case ColDeliverableVolume:
		return r.DeliverableVolume, true
	case ColPctDeliverable:
		return r.PctDeliverable, true
	default:
		return 0, false
	}
}

// Set assigns the numeric column c. Non-numeric columns are ignored.
func (r *Record) Set(c Column, v float64) {
	switch c {
	case ColPrevClose:
		r.PrevClose = v
	case ColOpen:
		r.Open = v
	case ColHigh:
		r.High = v
	case ColLow:
		r.Low = v
	case ColLast:
		r.Last = v
	case ColClose:
		r.Close = v
	case ColVWAP:
		r.VWAP = v
	case ColVolume:
		r.Volume = v
	case ColTurnover:
		r.Turnover = v
	case ColTrades:
		r.Trades = v
	case ColDeliverableVolume:
		r.DeliverableVolume = v
	case ColPctDeliverable:
		r.PctDeliverable = v
	}
}

// CompanySeries is the date-ordered slice of Records for one symbol.
// Order is never reshuffled: partitioning is positional.
type CompanySeries struct {
	Symbol  string
	Records []Record
}

// Len returns the number of rows
func (s CompanySeries) Len() int {
	return len(s.Records)
}
