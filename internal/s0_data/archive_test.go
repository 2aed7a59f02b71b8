package s0_data

import (
	"archive/zip"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/contracts"
)

const header = "Date,Symbol,Series,Prev Close,Open,High,Low,Last,Close,VWAP,Volume,Turnover,Trades,Deliverable Volume,%Deliverble\n"

const sampleCSV = header +
	"2000-01-03,MUNDRAPORT,EQ,440.0,770.0,1050.0,770.0,959.0,962.9,984.72,27294366,2.6877e+15,,9859619,0.3612\n" +
	"2000-01-04,MUNDRAPORT,EQ,962.9,984.0,990.0,874.0,885.0,893.9,941.38,4581338,431279006000000.0,,1453278,0.3172\n" +
	"2000-01-03,TCS,EQ,100.0,101.0,103.0,99.0,102.0,102.5,101.7,1000,101700,55,600,0.6\n"

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stockdata.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "MUNDRAPORT", first.Symbol)
	assert.Equal(t, "EQ", first.Series)
	assert.Equal(t, 2000, first.Date.Year())
	assert.Equal(t, 770.0, first.Open)
	assert.Equal(t, 984.72, first.VWAP)
	assert.InDelta(t, 0.3612, first.PctDeliverable, 1e-12)
	assert.True(t, math.IsNaN(first.Trades), "empty cell loads as NaN")

	assert.Equal(t, 55.0, records[2].Trades)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	bad := strings.Replace(sampleCSV, ",VWAP,", ",AvgPrice,", 1)
	bad = strings.Replace(bad, "%Deliverble", "%Deliverable", 1)

	_, err := ReadCSV(strings.NewReader(bad))
	require.Error(t, err)

	var missing *contracts.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"VWAP", "%Deliverble"}, missing.Columns)
}

func TestReadCSV_BadValue(t *testing.T) {
	bad := header + "2000-01-03,TCS,EQ,1,abc,1,1,1,1,1,1,1,1,1,1\n"
	_, err := ReadCSV(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "Open")
}

func TestArchiveSource_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("first csv entry", func(t *testing.T) {
		path := writeZip(t, map[string]string{"NIFTY50_all.csv": sampleCSV})
		src := NewArchiveSource(path, "", zerolog.Nop())

		records, err := src.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
		assert.Equal(t, "archive:stockdata.zip", src.Name())
	})

	t.Run("named entry", func(t *testing.T) {
		path := writeZip(t, map[string]string{
			"stock_metadata.csv": "Company Name,Symbol\n",
			"NIFTY50_all.csv":    sampleCSV,
		})
		records, err := NewArchiveSource(path, "NIFTY50_all.csv", zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("missing entry", func(t *testing.T) {
		path := writeZip(t, map[string]string{"NIFTY50_all.csv": sampleCSV})
		_, err := NewArchiveSource(path, "other.csv", zerolog.Nop()).Load(ctx)
		assert.Error(t, err)
	})

	t.Run("plain csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
		records, err := NewArchiveSource(path, "", zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewArchiveSource("unused.zip", "", zerolog.Nop()).Load(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
