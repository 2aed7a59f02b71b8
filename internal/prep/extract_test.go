package prep

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/contracts"
)

func record(symbol string, day int, v float64) contracts.Record {
	return contracts.Record{
		Date:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Symbol: symbol,
		Series: "EQ",
		Open:   v, High: v + 1, Low: v - 1, Last: v, Close: v,
		VWAP: v,
	}
}

func TestSymbols(t *testing.T) {
	records := []contracts.Record{
		record("TCS", 0, 1), record("INFY", 0, 1), record("TCS", 1, 2), record("WIPRO", 0, 1),
	}
	assert.Equal(t, []string{"TCS", "INFY", "WIPRO"}, Symbols(records))
	assert.Empty(t, Symbols(nil))
}

func TestExtractCompany(t *testing.T) {
	records := []contracts.Record{
		record("TCS", 0, 1), record("INFY", 0, 5), record("TCS", 1, 2), record("TCS", 2, 3),
	}

	t.Run("preserves order", func(t *testing.T) {
		s, err := ExtractCompany(records, "TCS")
		require.NoError(t, err)
		require.Equal(t, 3, s.Len())
		for i, r := range s.Records {
			assert.Equal(t, "TCS", r.Symbol)
			assert.Equal(t, float64(i+1), r.VWAP)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ExtractCompany(records, "HDFC")
		var empty *contracts.EmptySeriesError
		require.True(t, errors.As(err, &empty))
		assert.Equal(t, "HDFC", empty.Symbol)
	})
}

func TestGroupBySymbol(t *testing.T) {
	records := []contracts.Record{record("A", 0, 1), record("B", 0, 2), record("A", 1, 3)}
	groups := GroupBySymbol(records)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups["A"].Len())
	assert.Equal(t, 3.0, groups["A"].Records[1].VWAP)
}
