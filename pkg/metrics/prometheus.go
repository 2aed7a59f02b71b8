package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects training run metrics on its own registry.
type Recorder struct {
	registry      *prometheus.Registry
	runs          prometheus.Counter
	companies     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	trainDuration prometheus.Histogram
	rmse          *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vwapcast_runs_total",
				Help: "Total number of completed evaluation runs",
			},
		),
		companies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwapcast_companies_total",
				Help: "Total number of company pipelines by outcome",
			},
			[]string{"status"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwapcast_failures_total",
				Help: "Total number of per-company failures by kind",
			},
			[]string{"kind"},
		),
		trainDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vwapcast_train_duration_seconds",
				Help:    "Duration of one company pipeline in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		rmse: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vwapcast_rmse",
				Help: "Latest RMSE in scaled label units",
			},
			[]string{"symbol", "split"},
		),
	}
}

// RecordRun records a finished run.
func (r *Recorder) RecordRun() {
	r.runs.Inc()
}

// RecordCompany records a company pipeline outcome and its duration.
func (r *Recorder) RecordCompany(status string, seconds float64) {
	r.companies.WithLabelValues(status).Inc()
	r.trainDuration.Observe(seconds)
}

// RecordFailure records a per-company failure.
func (r *Recorder) RecordFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

// RecordRMSE records the latest train/test RMSE for a symbol.
func (r *Recorder) RecordRMSE(symbol string, train, test float64) {
	r.rmse.WithLabelValues(symbol, "train").Set(train)
	r.rmse.WithLabelValues(symbol, "test").Set(test)
}

// Registry exposes the underlying registry (tests, custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler serving this recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
