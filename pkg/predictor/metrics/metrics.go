// Package metrics provides Prometheus metrics for the scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics collects and exposes scoring-related Prometheus metrics.
// Everything here is write-only from the engine's point of view; metric
// values never feed back into scoring decisions.
type EngineMetrics struct {
	registry *prometheus.Registry

	// Prediction metrics
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec
	EdgeSize           *prometheus.HistogramVec
	ConfidenceScore    *prometheus.HistogramVec

	// Factor metrics
	FactorFailures *prometheus.CounterVec
	FactorValue    *prometheus.HistogramVec

	// Edge detector metrics
	EdgesTotal      *prometheus.CounterVec
	Recommendations *prometheus.CounterVec

	// Consensus metrics
	ConsensusQuotes      *prometheus.HistogramVec
	ConsensusUnavailable *prometheus.CounterVec

	// Slate metrics
	SlateRuns     *prometheus.CounterVec
	SlateDuration *prometheus.HistogramVec
	SlateEdgeRate *prometheus.GaugeVec
}

// NewEngineMetrics creates a new metrics collector on a private registry.
func NewEngineMetrics() *EngineMetrics {
	registry := prometheus.NewRegistry()

	em := &EngineMetrics{
		registry: registry,

		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_predictions_total",
				Help: "Total number of predictions generated",
			},
			[]string{"type"},
		),
		PredictionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_prediction_duration_seconds",
				Help:    "End-to-end prediction latency",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{},
		),
		EdgeSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_edge_size_points",
				Help:    "Absolute edge size in spread points",
				Buckets: []float64{0.25, 0.5, 1, 1.5, 2, 2.5, 3, 4, 5, 7},
			},
			[]string{},
		),
		ConfidenceScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_confidence_score",
				Help:    "Calibrated confidence score (0.15-0.95)",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
			},
			[]string{},
		),

		FactorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_factor_failures_total",
				Help: "Total number of neutralized factor calculations",
			},
			[]string{"factor"},
		),
		FactorValue: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_factor_value",
				Help:    "Raw factor values by category",
				Buckets: prometheus.LinearBuckets(-2, 0.5, 9),
			},
			[]string{"category"},
		),

		EdgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_edges_total",
				Help: "Edge classifications by final state",
			},
			[]string{"state"},
		),
		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_recommendations_total",
				Help: "Recommended actions emitted",
			},
			[]string{"action"},
		),

		ConsensusQuotes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_consensus_quotes",
				Help:    "Number of bookmaker quotes behind each consensus line",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
			[]string{},
		),
		ConsensusUnavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_consensus_unavailable_total",
				Help: "Matchups with no usable market line",
			},
			[]string{},
		),

		SlateRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfbedge_slate_runs_total",
				Help: "Total number of slate analysis runs",
			},
			[]string{"status"},
		),
		SlateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfbedge_slate_duration_seconds",
				Help:    "Full slate analysis duration",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{},
		),
		SlateEdgeRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cfbedge_slate_edge_rate",
				Help: "Fraction of the last slate classified as a contrarian edge",
			},
			[]string{},
		),
	}

	em.registerAll()

	return em
}

func (em *EngineMetrics) registerAll() {
	em.registry.MustRegister(
		em.PredictionsTotal,
		em.PredictionDuration,
		em.EdgeSize,
		em.ConfidenceScore,
		em.FactorFailures,
		em.FactorValue,
		em.EdgesTotal,
		em.Recommendations,
		em.ConsensusQuotes,
		em.ConsensusUnavailable,
		em.SlateRuns,
		em.SlateDuration,
		em.SlateEdgeRate,
	)
}

// Registry returns the prometheus registry.
func (em *EngineMetrics) Registry() *prometheus.Registry {
	return em.registry
}

// --- Helper methods for recording metrics ---

// RecordPrediction records one completed prediction.
func (em *EngineMetrics) RecordPrediction(predictionType string, edgeSize, confidence, durationSec float64) {
	em.PredictionsTotal.WithLabelValues(predictionType).Inc()
	em.PredictionDuration.WithLabelValues().Observe(durationSec)
	em.EdgeSize.WithLabelValues().Observe(edgeSize)
	em.ConfidenceScore.WithLabelValues().Observe(confidence)
}

// RecordFactorFailure records a neutralized factor.
func (em *EngineMetrics) RecordFactorFailure(factor string) {
	em.FactorFailures.WithLabelValues(factor).Inc()
}

// RecordFactorValue records a successful factor value.
func (em *EngineMetrics) RecordFactorValue(category string, value float64) {
	em.FactorValue.WithLabelValues(category).Observe(value)
}

// RecordEdge records a final edge classification and its action.
func (em *EngineMetrics) RecordEdge(state, action string) {
	em.EdgesTotal.WithLabelValues(state).Inc()
	em.Recommendations.WithLabelValues(action).Inc()
}

// RecordConsensus records a consensus aggregation.
func (em *EngineMetrics) RecordConsensus(quotes int, available bool) {
	em.ConsensusQuotes.WithLabelValues().Observe(float64(quotes))
	if !available {
		em.ConsensusUnavailable.WithLabelValues().Inc()
	}
}

// RecordSlate records a slate analysis run.
func (em *EngineMetrics) RecordSlate(status string, durationSec, edgeRate float64) {
	em.SlateRuns.WithLabelValues(status).Inc()
	em.SlateDuration.WithLabelValues().Observe(durationSec)
	em.SlateEdgeRate.WithLabelValues().Set(edgeRate)
}
