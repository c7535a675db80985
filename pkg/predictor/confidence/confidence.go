// Package confidence produces the calibrated confidence assessment for
// a prediction: six weighted component scores rolled into one number on
// [MinScore, MaxScore] with a five-tier label.
package confidence

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
)

// Score bounds. No assessment is ever fully certain or fully worthless.
const (
	MinScore = 0.15
	MaxScore = 0.95
)

// Component names.
const (
	ComponentDataQuality     = "data_quality"
	ComponentFactorConsensus = "factor_consensus"
	ComponentEdgeSig         = "edge_significance"
	ComponentMarketContext   = "market_context"
	ComponentHistorical      = "historical_performance"
	ComponentSituational     = "situational_factors"
)

// componentWeights sum to 1.0. historical_performance is a neutral
// placeholder until an outcome feedback loop exists.
var componentWeights = map[string]float64{
	ComponentDataQuality:     0.25,
	ComponentFactorConsensus: 0.20,
	ComponentEdgeSig:         0.20,
	ComponentMarketContext:   0.15,
	ComponentHistorical:      0.10,
	ComponentSituational:     0.10,
}

// majorConferences are treated as efficient markets where contrarian
// edges are harder to find.
var majorConferences = map[string]bool{
	"SEC":     true,
	"Big Ten": true,
	"Big 12":  true,
	"ACC":     true,
	"Pac-12":  true,
}

// Calculator assesses prediction confidence. Stateless apart from its
// logger; safe for concurrent use.
type Calculator struct {
	log zerolog.Logger
}

func NewCalculator(logger zerolog.Logger) *Calculator {
	return &Calculator{log: logger.With().Str("component", "confidence").Logger()}
}

// Clamp bounds a raw score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	return math.Min(math.Max(score, MinScore), MaxScore)
}

// Level maps a clamped score to its five-tier label.
func Level(score float64) core.ConfidenceLevel {
	switch {
	case score >= 0.85:
		return core.ConfidenceVeryHigh
	case score >= 0.70:
		return core.ConfidenceHigh
	case score >= 0.55:
		return core.ConfidenceMedium
	case score >= 0.40:
		return core.ConfidenceLow
	default:
		return core.ConfidenceVeryLow
	}
}

// Assess scores one prediction against its game context. The context
// may be nil; every component degrades to a neutral value rather than
// failing.
func (c *Calculator) Assess(pred core.PredictionResult, gc *core.GameContext) core.ConfidenceAssessment {
	components := map[string]float64{
		ComponentDataQuality:     dataQualityScore(pred),
		ComponentFactorConsensus: factorConsensusScore(pred.Factors),
		ComponentEdgeSig:         edgeSignificanceScore(pred),
		ComponentMarketContext:   marketContextScore(pred, gc),
		ComponentHistorical:      0.5,
		ComponentSituational:     situationalScore(pred, gc),
	}

	raw := 0.0
	weights := make(map[string]float64, len(componentWeights))
	for name, score := range components {
		weights[name] = componentWeights[name]
		raw += score * componentWeights[name]
	}
	score := Clamp(raw)

	assessment := core.ConfidenceAssessment{
		Score:       score,
		Level:       Level(score),
		Components:  components,
		Weights:     weights,
		Explanation: explain(score, components),
	}

	c.log.Debug().
		Str("home", pred.HomeTeam).
		Str("away", pred.AwayTeam).
		Float64("score", score).
		Str("level", string(assessment.Level)).
		Msg("confidence assessed")

	return assessment
}

func dataQualityScore(pred core.PredictionResult) float64 {
	successRatio := 0.0
	if pred.FactorsCalculated > 0 {
		successRatio = float64(pred.FactorsSuccessful) / float64(pred.FactorsCalculated)
	}
	sources := math.Min(float64(len(pred.DataSources))/3.0, 1.0)
	line := 0.0
	if pred.ConsensusSpread != nil {
		line = 1.0
	}
	return clamp01(pred.DataQuality)*0.4 + successRatio*0.3 + sources*0.2 + line*0.1
}

// factorConsensusScore measures whether the successful factors actually
// agree with each other. Fewer than two successful factors is no
// consensus signal either way.
func factorConsensusScore(factors []core.FactorResult) float64 {
	var values []float64
	weightedSum, weightSum := 0.0, 0.0
	for _, f := range factors {
		if !f.Success {
			continue
		}
		values = append(values, f.Value)
		weightedSum += f.WeightedValue
		weightSum += f.Weight
	}
	if len(values) < 2 {
		return 0.5
	}

	// Direction agreement: fraction of factors in the majority bucket,
	// where a cluster of neutral values (|v| <= 0.1) is itself a form
	// of agreement.
	pos, neg := 0, 0
	for _, v := range values {
		switch {
		case v > 0.1:
			pos++
		case v < -0.1:
			neg++
		}
	}
	neutral := len(values) - pos - neg
	agreement := float64(maxInt(pos, maxInt(neg, neutral))) / float64(len(values))

	// Magnitude consistency: tightly clustered values are a cleaner
	// signal than a wide scatter.
	consistency := math.Max(1.0-stddev(values)/2.0, 0)

	// Weight-adjusted agreement between the weighted mean and the
	// value spread.
	spread := 1.0
	for _, v := range values {
		if math.Abs(v) > spread {
			spread = math.Abs(v)
		}
	}
	weightedMean := weightedSum / weightSum
	balance := 1.0 - math.Min(math.Abs(weightedMean)/spread, 1.0)

	return agreement*0.5 + consistency*0.3 + balance*0.2
}

// edgeSignificanceScore double-penalizes a mismatch between the edge
// size band and the prediction label.
func edgeSignificanceScore(pred core.PredictionResult) float64 {
	var base float64
	switch {
	case pred.EdgeSize >= 3.0:
		base = 1.0
	case pred.EdgeSize >= 2.0:
		base = 0.8
	case pred.EdgeSize >= 1.0:
		base = 0.6
	case pred.EdgeSize >= 0.5:
		base = 0.4
	default:
		base = 0.2
	}
	return base * typeMultiplier(pred.PredictionType)
}

func typeMultiplier(t core.PredictionType) float64 {
	switch t {
	case core.StrongContrarian:
		return 1.0
	case core.ModerateContrarian:
		return 0.8
	case core.SlightContrarian:
		return 0.6
	case core.ConsensusAlignment:
		return 0.3
	case core.NoBettingData:
		return 0.2
	case core.PredictionError:
		return 0.0
	default:
		return 0.5
	}
}

func marketContextScore(pred core.PredictionResult, gc *core.GameContext) float64 {
	score := 0.5
	if pred.ConsensusSpread != nil {
		score += 0.2
	} else {
		score -= 0.1
	}
	if gc != nil {
		// Early-season lines are softer; by late season the market has
		// a full sample on every team.
		if gc.Week >= 1 && gc.Week <= 3 {
			score += 0.1
		} else if gc.Week >= 12 {
			score -= 0.1
		}
		homeMajor := majorConferences[gc.Home.Conference]
		awayMajor := majorConferences[gc.Away.Conference]
		if homeMajor && awayMajor {
			score -= 0.1
		} else if !homeMajor && !awayMajor {
			score += 0.1
		}
	}
	return clamp01(score)
}

// situationalScore penalizes high-variance emotional spots and rewards
// coaching stability.
func situationalScore(pred core.PredictionResult, gc *core.GameContext) float64 {
	score := 0.5
	for _, f := range pred.Factors {
		if !f.Success {
			continue
		}
		switch f.Name {
		case "desperation_index":
			if math.Abs(f.Value) > 1.0 {
				score -= 0.1
			}
		case "revenge_game":
			if math.Abs(f.Value) > 0.5 {
				score -= 0.05
			}
		case "experience_differential":
			if math.Abs(f.Value) > 0.5 {
				score += 0.1
			}
		}
	}
	if gc != nil {
		switch {
		case gc.Week >= 4 && gc.Week <= 11:
			score += 0.1
		case (gc.Week >= 1 && gc.Week <= 2) || gc.Week >= 14:
			score -= 0.1
		}
	}
	return clamp01(score)
}

func explain(score float64, components map[string]float64) string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return components[names[i]] > components[names[j]]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Confidence %s (%.2f)", strings.ReplaceAll(string(Level(score)), "_", " "), score)
	fmt.Fprintf(&b, "; strongest signal %s (%.2f)", strings.ReplaceAll(names[0], "_", " "), components[names[0]])
	weakest := names[len(names)-1]
	if components[weakest] < 0.4 {
		fmt.Fprintf(&b, ", weakest %s (%.2f)", strings.ReplaceAll(weakest, "_", " "), components[weakest])
	}
	return b.String()
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
