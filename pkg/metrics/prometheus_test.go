package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.RecordRun()
	r.RecordCompany("ok", 0.4)
	r.RecordCompany("failed", 0.01)
	r.RecordFailure("insufficient_data")
	r.RecordRMSE("TCS", 0.012, 0.034)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.companies.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("insufficient_data")))
	assert.InDelta(t, 0.034, testutil.ToFloat64(r.rmse.WithLabelValues("TCS", "test")), 1e-12)
}

func TestRecorderIsolatedRegistries(t *testing.T) {
	// two recorders must not collide on registration
	a := New()
	b := New()
	a.RecordRun()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.runs))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runs))
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordRun()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vwapcast_runs_total 1")
}
