package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironlab/cfbedge/core"
)

// stubSource returns a fixed adjustment so tests control the engine's
// input precisely.
type stubSource struct {
	adjustment float64
	successful int
	panics     bool
}

func (s *stubSource) CalculateAll(gc *core.GameContext) core.FactorReport {
	if s.panics {
		panic("factor source blew up")
	}
	n := s.successful
	if n == 0 {
		n = 8
	}
	return core.FactorReport{
		HomeTeam: gc.HomeTeam,
		AwayTeam: gc.AwayTeam,
		Summary: core.FactorSummary{
			TotalAdjustment: s.adjustment,
			CategoryAdjustments: map[core.Category]float64{
				core.CategoryCoaching:    s.adjustment,
				core.CategorySituational: 0,
				core.CategoryMomentum:    0,
			},
			FactorsCalculated: 11,
			FactorsSuccessful: n,
		},
	}
}

func newTestEngine(t *testing.T, source FactorSource) *Engine {
	t.Helper()
	e, err := New(nil, source, nil, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func gameContext(spread *float64) *core.GameContext {
	return &core.GameContext{
		HomeTeam:     "ALABAMA",
		AwayTeam:     "AUBURN",
		Week:         10,
		MarketSpread: spread,
		DataQuality:  0.8,
		DataSources:  []string{"odds_api", "cfbd"},
	}
}

func TestPredictContrarianScenario(t *testing.T) {
	e := newTestEngine(t, &stubSource{adjustment: 4.0})

	got := e.Predict(gameContext(core.Float64Ptr(-3.5)))

	require.Equal(t, core.StrongContrarian, got.PredictionType)
	require.NotNil(t, got.ConsensusSpread)
	require.NotNil(t, got.ContrarianSpread)
	assert.Equal(t, -3.5, *got.ConsensusSpread)
	assert.InDelta(t, 0.5, *got.ContrarianSpread, 1e-9)
	assert.InDelta(t, 4.0, got.EdgeSize, 1e-9)
	assert.Equal(t, core.DirectionHome, got.EdgeDirection)
	assert.True(t, got.HasEdge)
	assert.NotEmpty(t, got.ID)
	assert.NotEmpty(t, got.Recommendation)
	assert.GreaterOrEqual(t, got.Confidence, 0.15)
	assert.LessOrEqual(t, got.Confidence, 0.95)
}

func TestPredictNoBettingData(t *testing.T) {
	e := newTestEngine(t, &stubSource{adjustment: 2.5})

	got := e.Predict(gameContext(nil))

	assert.Equal(t, core.NoBettingData, got.PredictionType)
	assert.Nil(t, got.ConsensusSpread)
	assert.Nil(t, got.ContrarianSpread)
	assert.False(t, got.HasEdge)
	assert.Zero(t, got.EdgeSize)
	assert.NotEmpty(t, got.Recommendation)
	assert.Empty(t, got.Err, "missing line is a normal branch, not an error")
}

func TestPredictClassificationBands(t *testing.T) {
	cases := []struct {
		adjustment  float64
		wantType    core.PredictionType
		wantHasEdge bool
		wantDir     core.EdgeDirection
	}{
		{4.2, core.StrongContrarian, true, core.DirectionHome},
		{-3.0, core.StrongContrarian, true, core.DirectionAway},
		{1.5, core.ModerateContrarian, true, core.DirectionHome},
		// has_edge cuts at 1.0, inside the SLIGHT band.
		{1.2, core.SlightContrarian, true, core.DirectionHome},
		{-0.7, core.SlightContrarian, false, core.DirectionAway},
		{0.3, core.ConsensusAlignment, false, core.DirectionHome},
		{0.0, core.ConsensusAlignment, false, core.DirectionNeutral},
	}
	for _, tc := range cases {
		e := newTestEngine(t, &stubSource{adjustment: tc.adjustment})
		got := e.Predict(gameContext(core.Float64Ptr(-6.5)))

		assert.Equal(t, tc.wantType, got.PredictionType, "adjustment %v", tc.adjustment)
		assert.Equal(t, tc.wantHasEdge, got.HasEdge, "adjustment %v", tc.adjustment)
		assert.Equal(t, tc.wantDir, got.EdgeDirection, "adjustment %v", tc.adjustment)
	}
}

func TestPredictIdentityErrors(t *testing.T) {
	e := newTestEngine(t, &stubSource{adjustment: 1.0})

	cases := []struct {
		name string
		gc   *core.GameContext
	}{
		{"nil context", nil},
		{"missing away", &core.GameContext{HomeTeam: "ALABAMA"}},
		{"same team", &core.GameContext{HomeTeam: "ALABAMA", AwayTeam: "ALABAMA"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Predict(tc.gc)
			assert.Equal(t, core.PredictionError, got.PredictionType)
			assert.False(t, got.HasEdge)
			assert.Zero(t, got.Confidence)
			assert.NotEmpty(t, got.Err)
			assert.NotEmpty(t, got.Recommendation)
		})
	}
}

func TestPredictContainsPanics(t *testing.T) {
	e := newTestEngine(t, &stubSource{panics: true})

	got := e.Predict(gameContext(core.Float64Ptr(-3.5)))

	assert.Equal(t, core.PredictionError, got.PredictionType)
	assert.Contains(t, got.Err, "unexpected failure")
}

func TestPredictDeterministic(t *testing.T) {
	e := newTestEngine(t, &stubSource{adjustment: 2.2})
	gc := gameContext(core.Float64Ptr(-4.0))

	first := e.Predict(gc)
	second := e.Predict(gc)

	assert.Equal(t, first.TotalAdjustment, second.TotalAdjustment)
	assert.Equal(t, *first.ContrarianSpread, *second.ContrarianSpread)
	assert.Equal(t, first.PredictionType, second.PredictionType)
	assert.NotEqual(t, first.ID, second.ID, "each prediction gets its own id")
}

func TestStatsCounters(t *testing.T) {
	e := newTestEngine(t, &stubSource{adjustment: 1.0})

	e.Predict(gameContext(core.Float64Ptr(-3.0)))
	e.Predict(gameContext(nil))
	e.Predict(&core.GameContext{HomeTeam: "ALABAMA", AwayTeam: "ALABAMA"})

	stats := e.Stats()
	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, uint64(2), stats.Successful)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.GreaterOrEqual(t, stats.AvgLatency.Nanoseconds(), int64(0))
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero slight", Config{SlightThreshold: 0, ModerateThreshold: 1.5, StrongThreshold: 3, EdgeThreshold: 1}},
		{"unordered bands", Config{SlightThreshold: 2, ModerateThreshold: 1.5, StrongThreshold: 3, EdgeThreshold: 1}},
		{"zero edge threshold", Config{SlightThreshold: 0.5, ModerateThreshold: 1.5, StrongThreshold: 3, EdgeThreshold: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.cfg.Validate())
		})
	}

	require.NoError(t, DefaultConfig().Validate())
}
