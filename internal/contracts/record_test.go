package contracts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Column
		wantErr bool
	}{
		{name: "vwap", input: "VWAP", want: ColVWAP},
		{name: "with space", input: "Prev Close", want: ColPrevClose},
		{name: "dataset spelling", input: "%Deliverble", want: ColPctDeliverable},
		{name: "corrected spelling is unknown", input: "%Deliverable", wantErr: true},
		{name: "case sensitive", input: "vwap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumn_IsNumeric(t *testing.T) {
	assert.False(t, ColDate.IsNumeric())
	assert.False(t, ColSymbol.IsNumeric())
	assert.False(t, ColSeries.IsNumeric())
	for _, c := range NumericColumns {
		assert.True(t, c.IsNumeric(), c)
	}
	assert.Len(t, Schema, 15)
}

func TestRecord_ValueSet(t *testing.T) {
	var r Record
	for i, c := range NumericColumns {
		r.Set(c, float64(i+1))
	}

	for i, c := range NumericColumns {
		v, ok := r.Value(c)
		require.True(t, ok, c)
		assert.Equal(t, float64(i+1), v, c)
	}

	_, ok := r.Value(ColSymbol)
	assert.False(t, ok)

	r.Set(ColVWAP, math.NaN())
	v, _ := r.Value(ColVWAP)
	assert.True(t, math.IsNaN(v))
}
