// Package factors implements the closed set of weighted heuristic
// signals layered on top of the market consensus. Each calculator maps
// a resolved game context to a bounded adjustment (positive favors the
// home side); the registry runs them all and accumulates the weighted
// total. Factors are independent and commutative: registration order
// never affects the result.
package factors

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
)

// Calculator is one heuristic signal. Implementations must be
// deterministic and tolerant of missing context (return a neutral 0
// rather than an error when a differential cannot be formed).
type Calculator interface {
	Name() string
	Category() core.Category
	Weight() float64
	// OutputRange declares the bounds the computed value is clamped to.
	OutputRange() (min, max float64)
	Compute(gc *core.GameContext) (float64, error)
	Explain(gc *core.GameContext, value float64) string
}

// Config sets the three category weight targets. Within a category,
// each factor's share of the target is fixed.
type Config struct {
	CoachingWeight    float64
	SituationalWeight float64
	MomentumWeight    float64
}

// DefaultConfig returns the production category weights.
func DefaultConfig() *Config {
	return &Config{
		CoachingWeight:    0.40,
		SituationalWeight: 0.40,
		MomentumWeight:    0.20,
	}
}

const weightTolerance = 1e-3

// Validate checks that the category weights form a proper distribution.
func (c *Config) Validate() error {
	for _, w := range []float64{c.CoachingWeight, c.SituationalWeight, c.MomentumWeight} {
		if w <= 0 {
			return fmt.Errorf("category weights must be positive, got %v", w)
		}
	}
	total := c.CoachingWeight + c.SituationalWeight + c.MomentumWeight
	if math.Abs(total-1.0) > weightTolerance {
		return fmt.Errorf("category weights must sum to 1.0, got %v", total)
	}
	return nil
}

// Registry holds the closed factor set. It is built once at startup;
// the weight-sum invariant is checked here, at construction, not on
// every call.
type Registry struct {
	calculators []Calculator
	log         zerolog.Logger
}

// NewRegistry constructs the full factor set under the given category
// weights. A nil config uses DefaultConfig.
func NewRegistry(cfg *Config, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	calcs := []Calculator{
		// Coaching edge: four factors, equal shares of the category.
		newExperienceDifferential(cfg.CoachingWeight * 0.25),
		newPressureSituation(cfg.CoachingWeight * 0.25),
		newVenuePerformance(cfg.CoachingWeight * 0.25),
		newHeadToHead(cfg.CoachingWeight * 0.25),

		// Situational context: four factors, equal shares.
		newDesperationIndex(cfg.SituationalWeight * 0.25),
		newRevengeGame(cfg.SituationalWeight * 0.25),
		newLookaheadSandwich(cfg.SituationalWeight * 0.25),
		newStatementOpportunity(cfg.SituationalWeight * 0.25),

		// Momentum: three factors.
		newATSRecentForm(cfg.MomentumWeight * 0.35),
		newPointDifferentialTrend(cfg.MomentumWeight * 0.35),
		newCloseGamePerformance(cfg.MomentumWeight * 0.30),
	}

	total := 0.0
	for _, c := range calcs {
		min, max := c.OutputRange()
		if min >= max {
			return nil, fmt.Errorf("factor %s has invalid output range [%v, %v]", c.Name(), min, max)
		}
		total += c.Weight()
	}
	if math.Abs(total-1.0) > weightTolerance {
		return nil, fmt.Errorf("factor weights must sum to 1.0, got %v", total)
	}

	return &Registry{
		calculators: calcs,
		log:         logger.With().Str("component", "factors").Logger(),
	}, nil
}

// Calculators returns the registered factor set.
func (r *Registry) Calculators() []Calculator { return r.calculators }

// TotalWeight returns the sum of all factor weights.
func (r *Registry) TotalWeight() float64 {
	total := 0.0
	for _, c := range r.calculators {
		total += c.Weight()
	}
	return total
}

// CalculateAll runs every registered factor for one matchup. A factor
// failure is neutralized and tallied; it never aborts the batch.
func (r *Registry) CalculateAll(gc *core.GameContext) core.FactorReport {
	report := core.FactorReport{
		HomeTeam: gc.HomeTeam,
		AwayTeam: gc.AwayTeam,
		Factors:  make([]core.FactorResult, 0, len(r.calculators)),
		Summary: core.FactorSummary{
			CategoryAdjustments: map[core.Category]float64{
				core.CategoryCoaching:    0,
				core.CategorySituational: 0,
				core.CategoryMomentum:    0,
			},
		},
	}

	for _, calc := range r.calculators {
		res := SafeCalculate(calc, gc)
		report.Factors = append(report.Factors, res)
		report.Summary.FactorsCalculated++

		if res.Success {
			report.Summary.FactorsSuccessful++
			report.Summary.TotalAdjustment += res.WeightedValue
			report.Summary.CategoryAdjustments[res.Category] += res.WeightedValue
		} else {
			r.log.Debug().
				Str("factor", res.Name).
				Str("reason", res.Err).
				Msg("factor neutralized")
		}
	}

	r.log.Debug().
		Str("home", gc.HomeTeam).
		Str("away", gc.AwayTeam).
		Float64("total_adjustment", report.Summary.TotalAdjustment).
		Int("successful", report.Summary.FactorsSuccessful).
		Msg("factors calculated")

	return report
}

// SafeCalculate runs a single calculator with full failure containment:
// invalid inputs, errors, panics, and non-finite outputs all produce a
// neutral FactorResult instead of propagating.
func SafeCalculate(calc Calculator, gc *core.GameContext) (res core.FactorResult) {
	res = core.FactorResult{
		Name:     calc.Name(),
		Category: calc.Category(),
		Weight:   calc.Weight(),
	}

	defer func() {
		if p := recover(); p != nil {
			res = core.FactorResult{
				Name:     calc.Name(),
				Category: calc.Category(),
				Weight:   calc.Weight(),
				Err:      fmt.Sprintf("panic during calculation: %v", p),
			}
		}
	}()

	if gc.HomeTeam == "" || gc.AwayTeam == "" {
		res.Err = core.ErrMissingTeam.Error()
		return res
	}
	if gc.HomeTeam == gc.AwayTeam {
		res.Err = core.ErrSameTeam.Error()
		return res
	}

	value, err := calc.Compute(gc)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		res.Err = "factor returned non-finite value"
		return res
	}

	min, max := calc.OutputRange()
	value = clamp(value, min, max)

	res.Value = value
	res.WeightedValue = value * calc.Weight()
	res.Success = true
	res.Explanation = calc.Explain(gc, value)
	return res
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// defaultExplanation is the fallback explanation pattern shared by
// factors without a bespoke one.
func defaultExplanation(name string, gc *core.GameContext, value float64) string {
	if math.Abs(value) < 0.1 {
		return fmt.Sprintf("%s: neutral impact", name)
	}
	if value > 0 {
		return fmt.Sprintf("%s: favors %s (+%.1f)", name, gc.HomeTeam, value)
	}
	return fmt.Sprintf("%s: favors %s (%.1f)", name, gc.AwayTeam, value)
}
