package factors

import (
	"fmt"
	"math"

	"github.com/gridironlab/cfbedge/core"
)

// completedGames filters a schedule to finished games, most recent
// last, optionally capped to the trailing n.
func completedGames(schedule []core.GameResult, n int) []core.GameResult {
	out := make([]core.GameResult, 0, len(schedule))
	for _, g := range schedule {
		if g.Completed {
			out = append(out, g)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// atsRecentForm compares how the two teams have performed against the
// spread over their last five games. Teams without enough graded lines
// contribute nothing.
type atsRecentForm struct {
	weight float64
}

func newATSRecentForm(weight float64) *atsRecentForm {
	return &atsRecentForm{weight: weight}
}

func (f *atsRecentForm) Name() string                 { return "ats_recent_form" }
func (f *atsRecentForm) Category() core.Category      { return core.CategoryMomentum }
func (f *atsRecentForm) Weight() float64              { return f.weight }
func (f *atsRecentForm) OutputRange() (float64, float64) { return -1.5, 1.5 }

func (f *atsRecentForm) Compute(gc *core.GameContext) (float64, error) {
	home := atsScore(gc.Home.Schedule)
	away := atsScore(gc.Away.Schedule)
	return (home - away) * 1.5, nil
}

// atsScore maps recent cover rate to [-1, 1], with 0 meaning a neutral
// 50% cover rate or not enough graded games to judge.
func atsScore(schedule []core.GameResult) float64 {
	covers, graded := 0, 0
	for _, g := range completedGames(schedule, 5) {
		if g.CoveredSpread == nil {
			continue
		}
		graded++
		if *g.CoveredSpread {
			covers++
		}
	}
	if graded < 3 {
		return 0
	}
	return (float64(covers)/float64(graded) - 0.5) * 2.0
}

func (f *atsRecentForm) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.3:
		return fmt.Sprintf("%s covering at a much better clip recently", gc.HomeTeam)
	case value < -0.3:
		return fmt.Sprintf("%s covering at a much better clip recently", gc.AwayTeam)
	default:
		return "Recent spread performance roughly even"
	}
}

// pointDifferentialTrend measures whether each team is getting better
// or worse by comparing recency-weighted margins against the season
// baseline, with a bonus for consistency.
type pointDifferentialTrend struct {
	weight float64
}

func newPointDifferentialTrend(weight float64) *pointDifferentialTrend {
	return &pointDifferentialTrend{weight: weight}
}

func (f *pointDifferentialTrend) Name() string                 { return "point_differential_trend" }
func (f *pointDifferentialTrend) Category() core.Category      { return core.CategoryMomentum }
func (f *pointDifferentialTrend) Weight() float64              { return f.weight }
func (f *pointDifferentialTrend) OutputRange() (float64, float64) { return -2.0, 2.0 }

func (f *pointDifferentialTrend) Compute(gc *core.GameContext) (float64, error) {
	return trendScore(gc.Home.Schedule) - trendScore(gc.Away.Schedule), nil
}

// recentWeights weight the last four games, most recent first.
var recentWeights = []float64{0.4, 0.3, 0.2, 0.1}

func trendScore(schedule []core.GameResult) float64 {
	games := completedGames(schedule, 0)
	if len(games) < 3 {
		return 0
	}

	margins := make([]float64, len(games))
	seasonAvg := 0.0
	for i, g := range games {
		margins[i] = g.Margin()
		seasonAvg += g.Margin()
	}
	seasonAvg /= float64(len(games))

	recent := 0.0
	weightSum := 0.0
	for i := 0; i < len(recentWeights) && i < len(games); i++ {
		g := games[len(games)-1-i]
		recent += g.Margin() * recentWeights[i]
		weightSum += recentWeights[i]
	}
	recent /= weightSum

	improvement := recent - seasonAvg
	var score float64
	switch {
	case improvement >= 10:
		score = 1.5
	case improvement >= 5:
		score = 1.0
	case improvement <= -5:
		score = -1.0
	default:
		score = improvement / 10
	}

	switch sd := stddev(margins); {
	case sd < 7:
		score += 0.3
	case sd < 14:
		score += 0.15
	}
	return score
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

func (f *pointDifferentialTrend) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.5:
		return fmt.Sprintf("%s trending up significantly on point differential", gc.HomeTeam)
	case value < -0.5:
		return fmt.Sprintf("%s trending up significantly on point differential", gc.AwayTeam)
	default:
		return defaultExplanation("Point differential trend", gc, value)
	}
}

// closeGamePerformance rewards teams that win tight games. Blowout
// results feed in at a much lower weight as a quality check.
type closeGamePerformance struct {
	weight float64
}

func newCloseGamePerformance(weight float64) *closeGamePerformance {
	return &closeGamePerformance{weight: weight}
}

func (f *closeGamePerformance) Name() string                 { return "close_game_performance" }
func (f *closeGamePerformance) Category() core.Category      { return core.CategoryMomentum }
func (f *closeGamePerformance) Weight() float64              { return f.weight }
func (f *closeGamePerformance) OutputRange() (float64, float64) { return -1.5, 1.5 }

const closeGameMargin = 7.0

func (f *closeGamePerformance) Compute(gc *core.GameContext) (float64, error) {
	return clutchScore(gc.Home.Schedule) - clutchScore(gc.Away.Schedule), nil
}

func clutchScore(schedule []core.GameResult) float64 {
	games := completedGames(schedule, 6)

	var tight, blowout []core.GameResult
	for _, g := range games {
		if math.Abs(g.Margin()) <= closeGameMargin {
			tight = append(tight, g)
		} else {
			blowout = append(blowout, g)
		}
	}
	if len(tight) < 2 {
		return 0
	}

	clutch := 0.0
	for _, g := range tight {
		if g.Result == "W" {
			clutch += 1.0
		} else {
			clutch -= 0.7
		}
	}
	clutch /= float64(len(tight))

	experience := math.Min(float64(len(tight))/4.0, 1.0)

	quality := 0.0
	if len(blowout) > 0 {
		for _, g := range blowout {
			if g.Result == "W" {
				quality += 0.3
			} else {
				quality -= 0.3
			}
		}
		quality /= float64(len(blowout))
	}

	return clutch*0.8 + experience*0.2 + quality*0.2
}

func (f *closeGamePerformance) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.3:
		return fmt.Sprintf("%s markedly better in one-score games", gc.HomeTeam)
	case value < -0.3:
		return fmt.Sprintf("%s markedly better in one-score games", gc.AwayTeam)
	default:
		return "Close-game performance comparable"
	}
}
