// Package engine combines the market consensus with the weighted
// factor adjustments into a contrarian spread and a coarse
// classification band. The engine is synchronous and a pure function
// of its inputs; the only mutable state is write-only telemetry.
package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
	"github.com/gridironlab/cfbedge/pkg/predictor/confidence"
	"github.com/gridironlab/cfbedge/pkg/predictor/metrics"
)

// FactorSource produces the factor report for one matchup.
// *factors.Registry is the production implementation.
type FactorSource interface {
	CalculateAll(gc *core.GameContext) core.FactorReport
}

// Config holds the engine's classification thresholds in spread points.
type Config struct {
	// Band cutoffs by edge size.
	StrongThreshold   float64
	ModerateThreshold float64
	SlightThreshold   float64
	// HasEdge cutoff, independent of the bands.
	EdgeThreshold float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() *Config {
	return &Config{
		StrongThreshold:   3.0,
		ModerateThreshold: 1.5,
		SlightThreshold:   0.5,
		EdgeThreshold:     1.0,
	}
}

// Validate checks threshold ordering and positivity.
func (c *Config) Validate() error {
	if c.SlightThreshold <= 0 {
		return fmt.Errorf("slight threshold must be positive, got %v", c.SlightThreshold)
	}
	if !(c.SlightThreshold < c.ModerateThreshold && c.ModerateThreshold < c.StrongThreshold) {
		return fmt.Errorf("thresholds must be strictly increasing: %v < %v < %v",
			c.SlightThreshold, c.ModerateThreshold, c.StrongThreshold)
	}
	if c.EdgeThreshold <= 0 {
		return fmt.Errorf("edge threshold must be positive, got %v", c.EdgeThreshold)
	}
	return nil
}

// Stats is a snapshot of the engine's process-wide counters.
type Stats struct {
	Total      uint64
	Successful uint64
	Failed     uint64
	AvgLatency time.Duration
}

// Engine scores matchups. Safe for concurrent use.
type Engine struct {
	cfg     *Config
	factors FactorSource
	metrics *metrics.EngineMetrics
	log     zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// New constructs an engine. The metrics collector may be nil; a nil
// config uses DefaultConfig.
func New(cfg *Config, source FactorSource, m *metrics.EngineMetrics, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("factor source is required")
	}
	return &Engine{
		cfg:     cfg,
		factors: source,
		metrics: m,
		log:     logger.With().Str("component", "engine").Logger(),
	}, nil
}

// Predict scores one matchup. Every call path returns a complete
// result; failures become typed ERROR results instead of propagating.
func (e *Engine) Predict(gc *core.GameContext) (result core.PredictionResult) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			result = e.errorResult(gc, fmt.Sprintf("unexpected failure: %v", p))
		}
		e.record(result, time.Since(start))
	}()

	if gc == nil {
		return e.errorResult(nil, "game context is required")
	}
	if gc.HomeTeam == "" || gc.AwayTeam == "" {
		return e.errorResult(gc, core.ErrMissingTeam.Error())
	}
	if gc.HomeTeam == gc.AwayTeam {
		return e.errorResult(gc, core.ErrSameTeam.Error())
	}

	report := e.factors.CalculateAll(gc)
	if e.metrics != nil {
		for _, f := range report.Factors {
			if f.Success {
				e.metrics.RecordFactorValue(string(f.Category), f.Value)
			} else {
				e.metrics.RecordFactorFailure(f.Name)
			}
		}
	}

	result = core.PredictionResult{
		ID:       uuid.NewString(),
		HomeTeam: gc.HomeTeam,
		AwayTeam: gc.AwayTeam,
		Week:     gc.Week,

		TotalAdjustment:     report.Summary.TotalAdjustment,
		CategoryAdjustments: report.Summary.CategoryAdjustments,
		Factors:             report.Factors,
		FactorsCalculated:   report.Summary.FactorsCalculated,
		FactorsSuccessful:   report.Summary.FactorsSuccessful,

		DataQuality: gc.DataQuality,
		DataSources: gc.DataSources,
		GeneratedAt: time.Now().UTC(),
	}

	if gc.MarketSpread == nil {
		// A missing line is a normal terminal branch, not an error.
		result.PredictionType = core.NoBettingData
		result.EdgeDirection = core.DirectionNeutral
		result.Recommendation = "No betting line available; spread analysis not possible"
		result.Confidence = e.localConfidence(result, report)
		return result
	}

	consensus := *gc.MarketSpread
	contrarian := consensus + report.Summary.TotalAdjustment

	result.ConsensusSpread = core.Float64Ptr(consensus)
	result.ContrarianSpread = core.Float64Ptr(contrarian)
	result.EdgeSize = math.Abs(report.Summary.TotalAdjustment)
	result.EdgeDirection = direction(report.Summary.TotalAdjustment)
	result.PredictionType = e.classify(result.EdgeSize)
	result.HasEdge = result.EdgeSize >= e.cfg.EdgeThreshold
	result.Recommendation = e.recommend(result)
	result.Confidence = e.localConfidence(result, report)

	e.log.Debug().
		Str("id", result.ID).
		Str("home", result.HomeTeam).
		Str("away", result.AwayTeam).
		Float64("consensus", consensus).
		Float64("contrarian", contrarian).
		Float64("edge_size", result.EdgeSize).
		Str("type", string(result.PredictionType)).
		Msg("prediction generated")

	return result
}

// Stats returns a snapshot of the process-wide counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) classify(edgeSize float64) core.PredictionType {
	switch {
	case edgeSize >= e.cfg.StrongThreshold:
		return core.StrongContrarian
	case edgeSize >= e.cfg.ModerateThreshold:
		return core.ModerateContrarian
	case edgeSize >= e.cfg.SlightThreshold:
		return core.SlightContrarian
	default:
		return core.ConsensusAlignment
	}
}

func direction(adjustment float64) core.EdgeDirection {
	switch {
	case adjustment > 0:
		return core.DirectionHome
	case adjustment < 0:
		return core.DirectionAway
	default:
		return core.DirectionNeutral
	}
}

func (e *Engine) recommend(r core.PredictionResult) string {
	side := r.HomeTeam
	if r.EdgeDirection == core.DirectionAway {
		side = r.AwayTeam
	}
	switch r.PredictionType {
	case core.StrongContrarian:
		return fmt.Sprintf("STRONG CONTRARIAN OPPORTUNITY: model favors %s by %.1f points vs market", side, r.EdgeSize)
	case core.ModerateContrarian:
		return fmt.Sprintf("Moderate contrarian lean toward %s (%.1f point disagreement)", side, r.EdgeSize)
	case core.SlightContrarian:
		return fmt.Sprintf("Slight lean toward %s; disagreement of %.1f points is below the action threshold", side, r.EdgeSize)
	default:
		return "Model agrees with market consensus; no contrarian play"
	}
}

// localConfidence is the engine's cheap local estimate, distinct from
// the richer six-component assessment.
func (e *Engine) localConfidence(r core.PredictionResult, report core.FactorReport) float64 {
	score := r.DataQuality*0.4 + report.SuccessRate()*0.3 + math.Min(r.EdgeSize/5.0, 1.0)*0.2
	if r.ContrarianSpread != nil {
		score += 0.1
	}
	return confidence.Clamp(score)
}

func (e *Engine) errorResult(gc *core.GameContext, msg string) core.PredictionResult {
	r := core.PredictionResult{
		ID:             uuid.NewString(),
		PredictionType: core.PredictionError,
		EdgeDirection:  core.DirectionNeutral,
		Err:            msg,
		Recommendation: "Unable to generate prediction; do not act on this result",
		GeneratedAt:    time.Now().UTC(),
	}
	if gc != nil {
		r.HomeTeam = gc.HomeTeam
		r.AwayTeam = gc.AwayTeam
		r.Week = gc.Week
	}
	e.log.Warn().Str("home", r.HomeTeam).Str("away", r.AwayTeam).Str("reason", msg).Msg("prediction failed")
	return r
}

func (e *Engine) record(r core.PredictionResult, elapsed time.Duration) {
	e.mu.Lock()
	e.stats.Total++
	if r.PredictionType == core.PredictionError {
		e.stats.Failed++
	} else {
		e.stats.Successful++
	}
	// Rolling average over all predictions so far.
	n := time.Duration(e.stats.Total)
	e.stats.AvgLatency += (elapsed - e.stats.AvgLatency) / n
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordPrediction(string(r.PredictionType), r.EdgeSize, r.Confidence, elapsed.Seconds())
	}
}
