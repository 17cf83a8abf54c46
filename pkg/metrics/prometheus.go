package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	computations     *prometheus.CounterVec
	sourceDrops      *prometheus.CounterVec
	insufficientData *prometheus.CounterVec
	publishErrors    *prometheus.CounterVec
	lastScore        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		computations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorefuse_computations_total",
				Help: "Total number of score computations by recommendation",
			},
			[]string{"symbol", "recommendation"},
		),
		sourceDrops: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorefuse_source_drops_total",
				Help: "Total number of source scores dropped during normalization",
			},
			[]string{"kind", "reason"},
		),
		insufficientData: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorefuse_insufficient_data_total",
				Help: "Total number of requests rejected with no usable sources",
			},
			[]string{"symbol"},
		),
		publishErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorefuse_publish_errors_total",
				Help: "Total number of result publish failures",
			},
			[]string{"target"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scorefuse_last_score",
				Help: "Last computed final score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scorefuse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordComputation records a completed score computation.
func (r *Recorder) RecordComputation(symbol, recommendation string, finalScore float64) {
	r.computations.WithLabelValues(symbol, recommendation).Inc()
	r.lastScore.WithLabelValues(symbol).Set(finalScore)
}

// RecordSourceDrop records a dropped source score.
func (r *Recorder) RecordSourceDrop(kind, reason string) {
	r.sourceDrops.WithLabelValues(kind, reason).Inc()
}

// RecordInsufficientData records a rejected computation with no usable sources.
func (r *Recorder) RecordInsufficientData(symbol string) {
	r.insufficientData.WithLabelValues(symbol).Inc()
}

// RecordPublishError records a result publish failure.
func (r *Recorder) RecordPublishError(target string) {
	r.publishErrors.WithLabelValues(target).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
