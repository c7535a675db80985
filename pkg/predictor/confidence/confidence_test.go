package confidence

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
)

func TestComponentWeightsSumToOne(t *testing.T) {
	total := 0.0
	for _, w := range componentWeights {
		total += w
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("component weights sum to %v, want 1.0", total)
	}
}

func TestLevelBuckets(t *testing.T) {
	cases := []struct {
		score float64
		want  core.ConfidenceLevel
	}{
		{0.95, core.ConfidenceVeryHigh},
		{0.85, core.ConfidenceVeryHigh},
		{0.84, core.ConfidenceHigh},
		{0.70, core.ConfidenceHigh},
		{0.69, core.ConfidenceMedium},
		{0.55, core.ConfidenceMedium},
		{0.54, core.ConfidenceLow},
		{0.40, core.ConfidenceLow},
		{0.39, core.ConfidenceVeryLow},
		{0.15, core.ConfidenceVeryLow},
	}
	for _, tc := range cases {
		if got := Level(tc.score); got != tc.want {
			t.Errorf("Level(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestAssessDegenerateInputsStayClamped(t *testing.T) {
	c := NewCalculator(zerolog.Nop())

	cases := []struct {
		name string
		pred core.PredictionResult
		gc   *core.GameContext
	}{
		{"empty everything", core.PredictionResult{}, nil},
		{"error prediction", core.PredictionResult{PredictionType: core.PredictionError}, nil},
		{
			"max everything",
			core.PredictionResult{
				PredictionType:    core.StrongContrarian,
				EdgeSize:          4.5,
				DataQuality:       1.0,
				DataSources:       []string{"a", "b", "c", "d"},
				ConsensusSpread:   core.Float64Ptr(-7.0),
				FactorsCalculated: 11,
				FactorsSuccessful: 11,
			},
			&core.GameContext{Week: 13},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Assess(tc.pred, tc.gc)
			if got.Score < MinScore || got.Score > MaxScore {
				t.Errorf("score %v outside [%v, %v]", got.Score, MinScore, MaxScore)
			}
			if len(got.Components) != 6 {
				t.Errorf("expected 6 components, got %d", len(got.Components))
			}
			if got.Explanation == "" {
				t.Error("assessment must carry an explanation")
			}
		})
	}
}

func TestFactorConsensusNeedsTwoSuccesses(t *testing.T) {
	one := []core.FactorResult{
		{Name: "a", Value: 1.2, Weight: 0.1, WeightedValue: 0.12, Success: true},
		{Name: "b", Err: "failed"},
	}
	if got := factorConsensusScore(one); got != 0.5 {
		t.Errorf("single success should be neutral 0.5, got %v", got)
	}
}

func TestFactorConsensusRewardsAgreement(t *testing.T) {
	aligned := []core.FactorResult{
		{Value: 0.8, Weight: 0.1, WeightedValue: 0.08, Success: true},
		{Value: 0.9, Weight: 0.1, WeightedValue: 0.09, Success: true},
		{Value: 0.7, Weight: 0.1, WeightedValue: 0.07, Success: true},
	}
	split := []core.FactorResult{
		{Value: 1.8, Weight: 0.1, WeightedValue: 0.18, Success: true},
		{Value: -1.9, Weight: 0.1, WeightedValue: -0.19, Success: true},
		{Value: 1.7, Weight: 0.1, WeightedValue: 0.17, Success: true},
	}
	if a, s := factorConsensusScore(aligned), factorConsensusScore(split); a <= s {
		t.Errorf("aligned factors (%v) should score above split factors (%v)", a, s)
	}
}

func TestFactorConsensusNeutralCluster(t *testing.T) {
	// Two near-zero values and one strong positive: the neutral bucket
	// is the majority, so agreement is 2/3, not perfect agreement among
	// the loud factors.
	mostlyQuiet := []core.FactorResult{
		{Value: 0.05, Weight: 0.1, WeightedValue: 0.005, Success: true},
		{Value: 0.05, Weight: 0.1, WeightedValue: 0.005, Success: true},
		{Value: 1.0, Weight: 0.1, WeightedValue: 0.1, Success: true},
	}
	// agreement 2/3 * 0.5 + consistency 0.776083 * 0.3 + balance 0.633333 * 0.2
	if got := factorConsensusScore(mostlyQuiet); math.Abs(got-0.692825) > 1e-4 {
		t.Errorf("factorConsensusScore = %v, want 0.692825", got)
	}

	allQuiet := []core.FactorResult{
		{Value: 0.02, Weight: 0.1, WeightedValue: 0.002, Success: true},
		{Value: -0.03, Weight: 0.1, WeightedValue: -0.003, Success: true},
		{Value: 0.0, Weight: 0.1, WeightedValue: 0.0, Success: true},
	}
	if quiet, mixed := factorConsensusScore(allQuiet), factorConsensusScore(mostlyQuiet); quiet <= mixed {
		t.Errorf("uniformly quiet factors (%v) should score above a mixed set (%v)", quiet, mixed)
	}
}

func TestEdgeSignificanceBands(t *testing.T) {
	cases := []struct {
		edge float64
		typ  core.PredictionType
		want float64
	}{
		{3.5, core.StrongContrarian, 1.0},
		{2.2, core.ModerateContrarian, 0.8 * 0.8},
		{1.2, core.SlightContrarian, 0.6 * 0.6},
		{0.7, core.SlightContrarian, 0.4 * 0.6},
		{0.2, core.ConsensusAlignment, 0.2 * 0.3},
		{3.5, core.PredictionError, 0},
		{1.2, core.PredictionType("FUTURE_TYPE"), 0.6 * 0.5},
	}
	for _, tc := range cases {
		pred := core.PredictionResult{EdgeSize: tc.edge, PredictionType: tc.typ}
		if got := edgeSignificanceScore(pred); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("edgeSignificanceScore(%v, %s) = %v, want %v", tc.edge, tc.typ, got, tc.want)
		}
	}
}

func TestMarketContextScore(t *testing.T) {
	withLine := core.PredictionResult{ConsensusSpread: core.Float64Ptr(-3.5)}
	noLine := core.PredictionResult{}

	gc := &core.GameContext{
		Week: 13,
		Home: core.TeamContext{Conference: "SEC"},
		Away: core.TeamContext{Conference: "SEC"},
	}
	// 0.5 + 0.2 line - 0.1 late season - 0.1 major conference matchup
	if got := marketContextScore(withLine, gc); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("marketContextScore = %v, want 0.5", got)
	}
	// 0.5 - 0.1 no line + 0.1 early season + 0.1 non-major matchup
	early := &core.GameContext{Week: 2}
	if got := marketContextScore(noLine, early); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("marketContextScore = %v, want 0.6", got)
	}
	// Soft early-season lines with a line posted are the sweet spot.
	if got := marketContextScore(withLine, early); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("marketContextScore = %v, want 0.9", got)
	}
}

func TestAssessWeightsAreIsolatedPerCall(t *testing.T) {
	c := NewCalculator(zerolog.Nop())
	pred := core.PredictionResult{
		PredictionType:  core.ModerateContrarian,
		EdgeSize:        2.0,
		DataQuality:     0.8,
		ConsensusSpread: core.Float64Ptr(-3.0),
	}

	first := c.Assess(pred, nil)
	for name := range first.Weights {
		first.Weights[name] = 99
	}

	second := c.Assess(pred, nil)
	if second.Score != first.Score {
		t.Errorf("score changed after caller mutated weights: %v != %v", second.Score, first.Score)
	}
	for name, w := range second.Weights {
		if w != componentWeights[name] {
			t.Errorf("weight %s = %v, want %v", name, w, componentWeights[name])
		}
	}
}

func TestClampBounds(t *testing.T) {
	if got := Clamp(0.01); got != MinScore {
		t.Errorf("Clamp(0.01) = %v, want %v", got, MinScore)
	}
	if got := Clamp(1.4); got != MaxScore {
		t.Errorf("Clamp(1.4) = %v, want %v", got, MaxScore)
	}
	if got := Clamp(0.6); got != 0.6 {
		t.Errorf("Clamp(0.6) = %v, want 0.6", got)
	}
}
