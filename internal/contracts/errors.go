package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// MissingColumnError: input table lacks required columns (fatal)
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// EmptySeriesError: a symbol has zero matching rows (per-company)
type EmptySeriesError struct {
	Symbol string
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("no rows for symbol %q", e.Symbol)
}

// InsufficientDataError: too few rows to form non-empty partitions (per-company)
type InsufficientDataError struct {
	Symbol  string
	Rows    int
	MinRows int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("symbol %q has %d rows, need at least %d", e.Symbol, e.Rows, e.MinRows)
}

// NumericError: NaN/Inf detected after scaling or training (per-company)
type NumericError struct {
	Symbol string
	Stage  string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("non-finite values for symbol %q at %s", e.Symbol, e.Stage)
}

// FailureKind classifies a non-fatal per-company failure
type FailureKind string

const (
	FailureEmptySeries      FailureKind = "empty_series"
	FailureInsufficientData FailureKind = "insufficient_data"
	FailureNumeric          FailureKind = "numeric"
	FailureOther            FailureKind = "other"
)

// FailureKindOf classifies err with errors.As
func FailureKindOf(err error) FailureKind {
	var empty *EmptySeriesError
	var insufficient *InsufficientDataError
	var numeric *NumericError

	switch {
	case errors.As(err, &empty):
		return FailureEmptySeries
	case errors.As(err, &insufficient):
		return FailureInsufficientData
	case errors.As(err, &numeric):
		return FailureNumeric
	default:
		return FailureOther
	}
}

// IsCompanyError reports whether err is one of the per-company error types
// that must not abort a batch run.
func IsCompanyError(err error) bool {
	return FailureKindOf(err) != FailureOther
}
