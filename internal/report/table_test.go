package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/contracts"
)

var tableResults = []contracts.ResultRecord{
	{Symbol: "TCS", TrainRMSE: 0.0123, TestRMSE: 0.0456, Rows: 100, TrainRows: 72, ValRows: 8, TestRows: 20},
	{Symbol: "BAD", TrainRMSE: contracts.NaN(), TestRMSE: contracts.NaN(), Numeric: true},
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tableResults))

	out := buf.String()
	assert.Contains(t, out, "Train RMSE")
	assert.Contains(t, out, "TCS")
	assert.Contains(t, out, "0.012300")
	assert.Contains(t, out, "NaN")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestWriteSummary(t *testing.T) {
	s := Summarize(tableResults, []contracts.Failure{{Symbol: "BAD", Kind: contracts.FailureNumeric}}, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))

	out := buf.String()
	for _, label := range []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "companies=2 succeeded=1 failed=1")
	assert.Contains(t, out, "numeric: 1")
}

func TestWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFailures(&buf, nil))
	assert.Empty(t, buf.String())

	require.NoError(t, WriteFailures(&buf, []contracts.Failure{{Symbol: "X", Kind: contracts.FailureEmptySeries, Message: "no rows"}}))
	assert.Contains(t, buf.String(), "empty_series")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tableResults))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "symbol", rows[0][0])
	assert.Equal(t, []string{"TCS", "0.0123", "0.0456", "100", "72", "8", "20"}, rows[1])
	assert.Equal(t, "NaN", rows[2][1])
}
