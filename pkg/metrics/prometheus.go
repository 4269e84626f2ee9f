package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	rowsWritten prometheus.Counter
	rotations   prometheus.Counter
	errorsTotal *prometheus.CounterVec
	lastValue   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsWritten: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "indexpulse_rows_written_total",
				Help: "Total number of CSV rows written",
			},
		),
		rotations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "indexpulse_rotations_total",
				Help: "Total number of daily file rotations",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexpulse_last_value",
				Help: "Last recorded value for a series",
			},
			[]string{"series"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRowWritten counts one appended CSV row.
func (r *Recorder) RecordRowWritten() {
	r.rowsWritten.Inc()
}

// RecordRotation counts one daily file rotation.
func (r *Recorder) RecordRotation() {
	r.rotations.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastValue records the last reading for a series.
func (r *Recorder) RecordLastValue(series string, v float64) {
	r.lastValue.WithLabelValues(series).Set(v)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
