package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisionsTotal   *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	analysisDuration prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smarttrade_decisions_total",
				Help: "Total number of decisions emitted per symbol and action",
			},
			[]string{"symbol", "action"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smarttrade_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smarttrade_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		analysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smarttrade_analysis_duration_seconds",
				Help:    "Duration of portfolio analysis runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordDecision records one emitted decision.
func (r *Recorder) RecordDecision(symbol, action string) {
	r.decisionsTotal.WithLabelValues(symbol, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordAnalysisDuration records one analysis run's wall time.
func (r *Recorder) RecordAnalysisDuration(seconds float64) {
	r.analysisDuration.Observe(seconds)
}
