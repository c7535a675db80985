package factors

import (
	"errors"
	"fmt"
	"math"

	"github.com/gridironlab/cfbedge/core"
)

var errNoCoachingData = errors.New("coaching comparison unavailable")

// experienceDifferential scores the gap in head-coaching experience.
// Seasons as a head coach dominate, tenure at the current program adds
// stability, and first-year coaches are discounted hard.
type experienceDifferential struct {
	weight float64
}

func newExperienceDifferential(weight float64) *experienceDifferential {
	return &experienceDifferential{weight: weight}
}

func (f *experienceDifferential) Name() string                 { return "experience_differential" }
func (f *experienceDifferential) Category() core.Category      { return core.CategoryCoaching }
func (f *experienceDifferential) Weight() float64              { return f.weight }
func (f *experienceDifferential) OutputRange() (float64, float64) { return -2.0, 2.0 }

func (f *experienceDifferential) Compute(gc *core.GameContext) (float64, error) {
	if gc.Coaching == nil {
		return 0, errNoCoachingData
	}
	home := experienceScore(gc.Coaching.Home)
	away := experienceScore(gc.Coaching.Away)
	return (home - away) * 2.0, nil
}

func experienceScore(c core.CoachProfile) float64 {
	exp := math.Min(float64(c.SeasonsAsHC), 15) / 15 * 0.7
	tenure := math.Min(float64(c.TenureYears), 8) / 8 * 0.3
	score := exp + tenure
	if c.SeasonsAsHC <= 1 {
		score *= 0.5
	}
	return score
}

func (f *experienceDifferential) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.5:
		return fmt.Sprintf("Significant coaching experience edge for %s", gc.HomeTeam)
	case value < -0.5:
		return fmt.Sprintf("Significant coaching experience edge for %s", gc.AwayTeam)
	default:
		return "Coaching experience roughly even"
	}
}

// pressureSituation estimates how much job and game pressure each staff
// carries into the matchup. Higher pressure on one side favors the
// other.
type pressureSituation struct {
	weight float64
}

func newPressureSituation(weight float64) *pressureSituation {
	return &pressureSituation{weight: weight}
}

func (f *pressureSituation) Name() string                 { return "pressure_situation" }
func (f *pressureSituation) Category() core.Category      { return core.CategoryCoaching }
func (f *pressureSituation) Weight() float64              { return f.weight }
func (f *pressureSituation) OutputRange() (float64, float64) { return -2.0, 2.0 }

func (f *pressureSituation) Compute(gc *core.GameContext) (float64, error) {
	home := jobPressure(gc.Home.Record)*0.4 + gamePressure(gc.Week, true)*0.6
	away := jobPressure(gc.Away.Record)*0.4 + gamePressure(gc.Week, false)*0.6
	// Pressure degrades performance, so the more pressured away staff
	// shifts the line toward the home side.
	return (away - home) * 2.0, nil
}

func jobPressure(rec core.WinRecord) float64 {
	if rec.Games() == 0 {
		return 0.4
	}
	switch {
	case rec.WinPct < 0.30:
		return 0.8
	case rec.WinPct < 0.45:
		return 0.6
	case rec.WinPct > 0.70:
		return 0.2
	default:
		return 0.4
	}
}

func gamePressure(week int, home bool) float64 {
	p := 0.3
	if week >= 12 {
		p += 0.2
	} else if week >= 1 && week <= 3 {
		p -= 0.1
	}
	if home {
		p += 0.1
	}
	return clamp(p, 0, 1)
}

func (f *pressureSituation) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.3:
		return fmt.Sprintf("%s staff under notably more pressure", gc.AwayTeam)
	case value < -0.3:
		return fmt.Sprintf("%s staff under notably more pressure", gc.HomeTeam)
	default:
		return "Pressure situations comparable"
	}
}

// venuePerformance compares how each team actually performs at the
// relevant venue, layered over a modest baseline home edge.
type venuePerformance struct {
	weight float64
}

func newVenuePerformance(weight float64) *venuePerformance {
	return &venuePerformance{weight: weight}
}

func (f *venuePerformance) Name() string                 { return "venue_performance" }
func (f *venuePerformance) Category() core.Category      { return core.CategoryCoaching }
func (f *venuePerformance) Weight() float64              { return f.weight }
func (f *venuePerformance) OutputRange() (float64, float64) { return -1.5, 1.5 }

func (f *venuePerformance) Compute(gc *core.GameContext) (float64, error) {
	value := 0.3 // baseline home edge
	if gc.Home.Venue.Home.Games() > 0 {
		value += (gc.Home.Venue.Home.WinPct - 0.5) * 2.0
	}
	if gc.Away.Venue.Away.Games() > 0 {
		value -= (gc.Away.Venue.Away.WinPct - 0.5) * 1.5
	}
	return value, nil
}

func (f *venuePerformance) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.5:
		return fmt.Sprintf("%s strong at home while %s struggles on the road", gc.HomeTeam, gc.AwayTeam)
	case value < -0.2:
		return fmt.Sprintf("%s travels well enough to erase the home edge", gc.AwayTeam)
	default:
		return "Typical home venue advantage"
	}
}

// headToHead uses the record between the two current head coaches. A
// short history is treated as no signal at all.
type headToHead struct {
	weight float64
}

func newHeadToHead(weight float64) *headToHead {
	return &headToHead{weight: weight}
}

func (f *headToHead) Name() string                 { return "head_to_head" }
func (f *headToHead) Category() core.Category      { return core.CategoryCoaching }
func (f *headToHead) Weight() float64              { return f.weight }
func (f *headToHead) OutputRange() (float64, float64) { return -1.0, 1.0 }

func (f *headToHead) Compute(gc *core.GameContext) (float64, error) {
	if gc.Coaching == nil {
		return 0, errNoCoachingData
	}
	h2h := gc.Coaching.HeadToHead
	if h2h.TotalGames < 3 {
		return 0, nil
	}
	homePct := float64(h2h.HomeWins) / float64(h2h.TotalGames)
	return (homePct - 0.5) * 2.0, nil
}

func (f *headToHead) Explain(gc *core.GameContext, value float64) string {
	if gc.Coaching == nil || gc.Coaching.HeadToHead.TotalGames < 3 {
		return "Insufficient head-to-head history between these coaches"
	}
	return defaultExplanation("Head-to-head coaching record", gc, value)
}
