package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "empty", err: &EmptySeriesError{Symbol: "TCS"}, want: FailureEmptySeries},
		{name: "insufficient", err: &InsufficientDataError{Symbol: "TCS", Rows: 2, MinRows: 10}, want: FailureInsufficientData},
		{name: "numeric", err: &NumericError{Symbol: "TCS", Stage: "train"}, want: FailureNumeric},
		{name: "wrapped", err: fmt.Errorf("company TCS: %w", &NumericError{Symbol: "TCS"}), want: FailureNumeric},
		{name: "missing column is not per-company", err: &MissingColumnError{Columns: []string{"VWAP"}}, want: FailureOther},
		{name: "plain", err: errors.New("boom"), want: FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureKindOf(tt.err))
			assert.Equal(t, tt.want != FailureOther, IsCompanyError(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "missing required columns: VWAP, Close",
		(&MissingColumnError{Columns: []string{"VWAP", "Close"}}).Error())
	assert.Contains(t, (&InsufficientDataError{Symbol: "INFY", Rows: 2, MinRows: 10}).Error(), "2 rows")
	assert.Contains(t, (&EmptySeriesError{Symbol: "INFY"}).Error(), "INFY")
}
