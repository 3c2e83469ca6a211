package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"CoinPulse/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations       *prometheus.CounterVec
	processorFailures *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	lastPrice         *prometheus.GaugeVec
	signalStrength    *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_evaluations_total",
				Help: "Total number of signal evaluations by outcome",
			},
			[]string{"market", "signal"},
		),
		processorFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_processor_failures_total",
				Help: "Total number of excluded processor runs",
			},
			[]string{"market", "processor"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price",
				Help: "Last observed price for a market",
			},
			[]string{"market"},
		),
		signalStrength: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_signal_strength",
				Help: "Strength of the most recent signal for a market",
			},
			[]string{"market"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation counts one completed evaluation by outcome.
func (r *Recorder) RecordEvaluation(market string, signal models.SignalType) {
	r.evaluations.WithLabelValues(market, string(signal)).Inc()
}

// RecordProcessorFailure counts one excluded processor run.
func (r *Recorder) RecordProcessorFailure(market, processor string) {
	r.processorFailures.WithLabelValues(market, processor).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a market.
func (r *Recorder) RecordLastPrice(market string, price float64) {
	r.lastPrice.WithLabelValues(market).Set(price)
}

// RecordSignalStrength records the most recent signal strength.
func (r *Recorder) RecordSignalStrength(market string, strength float64) {
	r.signalStrength.WithLabelValues(market).Set(strength)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
