// Package edge re-classifies a prediction into one of six named edge
// states, applies the risk gate, and emits the recommendation and
// explanation a presentation layer can print as-is.
//
// The pipeline is single-shot: classify, validate/downgrade, recommend,
// explain. The gate only ever downgrades; severity never increases.
package edge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
	"github.com/gridironlab/cfbedge/pkg/predictor/metrics"
)

// Config holds the detector's thresholds. The classification cutoffs
// are intentionally independent of the prediction engine's bands.
type Config struct {
	StrongThreshold    float64
	ModerateThreshold  float64
	SlightThreshold    float64
	ConsensusThreshold float64

	// Risk gate.
	MaxEdgeSize    float64 // above this the line data is not trusted
	MinDataQuality float64
	LowConfidence  float64 // collapses STRONG/MODERATE to SLIGHT
	MedConfidence  float64 // collapses STRONG to MODERATE
	ActionFloor    float64 // below this everything is AVOID

	// Recommendation tiers. HighConfidence separates STRONG BUY from
	// BUY on a strong edge; MedConfidence separates BUY from LEAN on a
	// moderate one.
	HighConfidence float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() *Config {
	return &Config{
		StrongThreshold:    3.0,
		ModerateThreshold:  2.0,
		SlightThreshold:    1.0,
		ConsensusThreshold: 0.5,
		MaxEdgeSize:        5.0,
		MinDataQuality:     0.30,
		LowConfidence:      0.45,
		MedConfidence:      0.60,
		HighConfidence:     0.75,
		ActionFloor:        0.40,
	}
}

// Validate checks threshold ordering and bounds.
func (c *Config) Validate() error {
	if !(c.ConsensusThreshold < c.SlightThreshold &&
		c.SlightThreshold < c.ModerateThreshold &&
		c.ModerateThreshold < c.StrongThreshold) {
		return fmt.Errorf("classification thresholds must be strictly increasing")
	}
	if c.MaxEdgeSize <= c.StrongThreshold {
		return fmt.Errorf("max edge size %v must exceed the strong threshold %v", c.MaxEdgeSize, c.StrongThreshold)
	}
	if c.MinDataQuality < 0 || c.MinDataQuality > 1 {
		return fmt.Errorf("min data quality must be in [0,1], got %v", c.MinDataQuality)
	}
	if !(c.ActionFloor <= c.LowConfidence && c.LowConfidence <= c.MedConfidence && c.MedConfidence <= c.HighConfidence) {
		return fmt.Errorf("confidence gates must be ordered: floor <= low <= medium <= high")
	}
	return nil
}

// Detector classifies edges. Stateless apart from telemetry; safe for
// concurrent use.
type Detector struct {
	cfg     *Config
	metrics *metrics.EngineMetrics
	log     zerolog.Logger
}

// NewDetector constructs a detector. The metrics collector may be nil;
// a nil config uses DefaultConfig.
func NewDetector(cfg *Config, m *metrics.EngineMetrics, logger zerolog.Logger) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		cfg:     cfg,
		metrics: m,
		log:     logger.With().Str("component", "edge").Logger(),
	}, nil
}

// Detect runs the full pipeline for one prediction.
func (d *Detector) Detect(pred core.PredictionResult, conf core.ConfidenceAssessment) core.EdgeClassification {
	initial := d.classify(pred.EdgeSize)
	final := d.gate(initial, pred, conf.Score)

	result := core.EdgeClassification{
		Type:              final,
		EdgeSize:          pred.EdgeSize,
		Confidence:        conf.Score,
		RecommendedAction: d.recommend(final, pred, conf.Score),
	}
	result.Explanation = d.explain(result, pred)

	if d.metrics != nil {
		action := result.RecommendedAction
		if i := strings.IndexByte(action, ':'); i > 0 {
			action = action[:i]
		}
		d.metrics.RecordEdge(string(final), action)
	}

	d.log.Debug().
		Str("home", pred.HomeTeam).
		Str("away", pred.AwayTeam).
		Str("initial", string(initial)).
		Str("final", string(final)).
		Float64("confidence", conf.Score).
		Msg("edge classified")

	return result
}

func (d *Detector) classify(edgeSize float64) core.EdgeType {
	switch {
	case edgeSize >= d.cfg.StrongThreshold:
		return core.EdgeStrongContrarian
	case edgeSize >= d.cfg.ModerateThreshold:
		return core.EdgeModerateContrarian
	case edgeSize >= d.cfg.SlightThreshold:
		return core.EdgeSlightContrarian
	case edgeSize >= d.cfg.ConsensusThreshold:
		return core.EdgeConsensusPlay
	default:
		return core.EdgeNone
	}
}

// gate applies the risk checks. It only ever lowers severity.
func (d *Detector) gate(t core.EdgeType, pred core.PredictionResult, confidence float64) core.EdgeType {
	if pred.ConsensusSpread == nil || pred.ContrarianSpread == nil {
		return core.EdgeInsufficientData
	}
	if pred.DataQuality < d.cfg.MinDataQuality {
		return core.EdgeInsufficientData
	}
	if pred.EdgeSize > d.cfg.MaxEdgeSize {
		// Implausibly large edges are treated as bad line data.
		return core.EdgeInsufficientData
	}

	if confidence < d.cfg.LowConfidence {
		switch t {
		case core.EdgeStrongContrarian, core.EdgeModerateContrarian:
			return core.EdgeSlightContrarian
		case core.EdgeSlightContrarian:
			return core.EdgeConsensusPlay
		}
		return t
	}
	if confidence < d.cfg.MedConfidence && t == core.EdgeStrongContrarian {
		return core.EdgeModerateContrarian
	}
	return t
}

func (d *Detector) recommend(t core.EdgeType, pred core.PredictionResult, confidence float64) string {
	if t == core.EdgeInsufficientData || confidence < d.cfg.ActionFloor {
		return "AVOID: insufficient data or confidence to act"
	}

	side := pred.HomeTeam
	if pred.EdgeDirection == core.DirectionAway {
		side = pred.AwayTeam
	}

	switch t {
	case core.EdgeStrongContrarian:
		if confidence >= d.cfg.HighConfidence {
			return fmt.Sprintf("STRONG BUY: take %s against the spread", side)
		}
		return fmt.Sprintf("BUY: take %s against the spread", side)
	case core.EdgeModerateContrarian:
		if confidence >= d.cfg.MedConfidence {
			return fmt.Sprintf("BUY: take %s against the spread", side)
		}
		return fmt.Sprintf("LEAN: %s against the spread", side)
	case core.EdgeSlightContrarian:
		return fmt.Sprintf("LEAN: %s against the spread", side)
	case core.EdgeConsensusPlay:
		return "CONSENSUS: market line appears accurate"
	default:
		return "PASS: no meaningful disagreement with the market"
	}
}

func (d *Detector) explain(result core.EdgeClassification, pred core.PredictionResult) string {
	var parts []string

	switch result.Type {
	case core.EdgeInsufficientData:
		parts = append(parts, "Insufficient data to classify this matchup")
	case core.EdgeStrongContrarian:
		parts = append(parts, fmt.Sprintf("Strong %.1f-point disagreement with the market", result.EdgeSize))
	case core.EdgeModerateContrarian:
		parts = append(parts, fmt.Sprintf("Moderate %.1f-point disagreement with the market", result.EdgeSize))
	case core.EdgeSlightContrarian:
		parts = append(parts, fmt.Sprintf("Slight %.1f-point disagreement with the market", result.EdgeSize))
	case core.EdgeConsensusPlay:
		parts = append(parts, "Model essentially agrees with the market")
	default:
		parts = append(parts, "No edge detected")
	}

	parts = append(parts, fmt.Sprintf("confidence %.2f", result.Confidence))

	if name, value := dominantCategory(pred.CategoryAdjustments); name != "" {
		parts = append(parts, fmt.Sprintf("driven mainly by %s (%+.2f)", strings.ReplaceAll(name, "_", " "), value))
	}
	if pred.DataQuality < 0.5 {
		parts = append(parts, fmt.Sprintf("data quality is limited (%.2f)", pred.DataQuality))
	}
	if pred.ConsensusSpread != nil && pred.ContrarianSpread != nil {
		parts = append(parts, fmt.Sprintf("market %+.1f vs model %+.1f", *pred.ConsensusSpread, *pred.ContrarianSpread))
	}

	return strings.Join(parts, "; ")
}

// dominantCategory returns the largest-magnitude category adjustment
// when it is big enough to matter.
func dominantCategory(adjustments map[core.Category]float64) (string, float64) {
	var name string
	var best float64
	for _, cat := range core.Categories() {
		v := adjustments[cat]
		if abs(v) > abs(best) {
			name, best = string(cat), v
		}
	}
	if abs(best) <= 0.1 {
		return "", 0
	}
	return name, best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ScoredGame pairs a prediction with its confidence assessment for
// slate analysis.
type ScoredGame struct {
	Prediction core.PredictionResult
	Confidence core.ConfidenceAssessment
}

// Opportunity is one actionable slate entry.
type Opportunity struct {
	Prediction     core.PredictionResult    `json:"prediction"`
	Classification core.EdgeClassification  `json:"classification"`
}

// SlateSummary is the batch view over one slate of games.
type SlateSummary struct {
	Total            int                   `json:"total"`
	Counts           map[core.EdgeType]int `json:"counts"`
	EdgeRate         float64               `json:"edge_rate"`
	TopOpportunities []Opportunity         `json:"top_opportunities"`
}

const topOpportunityLimit = 5

// AnalyzeSlate classifies every scored game and summarizes the slate:
// per-state counts, the contrarian edge rate, and the top actionable
// opportunities ranked by edge size then confidence.
func (d *Detector) AnalyzeSlate(games []ScoredGame) SlateSummary {
	summary := SlateSummary{
		Total:  len(games),
		Counts: make(map[core.EdgeType]int),
	}

	var actionable []Opportunity
	for _, g := range games {
		cls := d.Detect(g.Prediction, g.Confidence)
		summary.Counts[cls.Type]++

		switch cls.Type {
		case core.EdgeStrongContrarian, core.EdgeModerateContrarian:
			actionable = append(actionable, Opportunity{Prediction: g.Prediction, Classification: cls})
		}
	}

	if summary.Total > 0 {
		edges := summary.Counts[core.EdgeStrongContrarian] +
			summary.Counts[core.EdgeModerateContrarian] +
			summary.Counts[core.EdgeSlightContrarian]
		summary.EdgeRate = float64(edges) / float64(summary.Total)
	}

	sort.SliceStable(actionable, func(i, j int) bool {
		a, b := actionable[i].Classification, actionable[j].Classification
		if a.EdgeSize != b.EdgeSize {
			return a.EdgeSize > b.EdgeSize
		}
		return a.Confidence > b.Confidence
	})
	if len(actionable) > topOpportunityLimit {
		actionable = actionable[:topOpportunityLimit]
	}
	summary.TopOpportunities = actionable

	d.log.Info().
		Int("games", summary.Total).
		Float64("edge_rate", summary.EdgeRate).
		Int("actionable", len(summary.TopOpportunities)).
		Msg("slate analyzed")

	return summary
}
