package factors

import (
	"fmt"

	"github.com/gridironlab/cfbedge/core"
)

// rivalries maps a matchup to its intensity on [0, 1]. Keys are built
// with rivalryKey so lookups are order-independent.
var rivalries = map[string]float64{
	rivalryKey("ALABAMA", "AUBURN"):           1.0,
	rivalryKey("MICHIGAN", "OHIO STATE"):      1.0,
	rivalryKey("OKLAHOMA", "TEXAS"):           1.0,
	rivalryKey("FLORIDA", "GEORGIA"):          0.9,
	rivalryKey("FLORIDA", "FLORIDA STATE"):    0.9,
	rivalryKey("FLORIDA STATE", "MIAMI"):      0.9,
	rivalryKey("CLEMSON", "SOUTH CAROLINA"):   0.9,
	rivalryKey("MICHIGAN", "MICHIGAN STATE"):  0.9,
	rivalryKey("OKLAHOMA", "OKLAHOMA STATE"):  0.9,
	rivalryKey("TEXAS", "TEXAS A&M"):          0.9,
	rivalryKey("PITTSBURGH", "WEST VIRGINIA"): 0.9,
	rivalryKey("NOTRE DAME", "USC"):           0.8,
	rivalryKey("UCLA", "USC"):                 0.8,
	rivalryKey("OREGON", "WASHINGTON"):        0.8,
	rivalryKey("OREGON", "OREGON STATE"):      0.8,
	rivalryKey("IOWA", "IOWA STATE"):          0.8,
	rivalryKey("KANSAS", "KANSAS STATE"):      0.8,
	rivalryKey("VIRGINIA", "VIRGINIA TECH"):   0.8,
	rivalryKey("GEORGIA", "GEORGIA TECH"):     0.8,
	rivalryKey("ALABAMA", "LSU"):              0.8,
	rivalryKey("ALABAMA", "TENNESSEE"):        0.8,
	rivalryKey("AUBURN", "GEORGIA"):           0.8,
	rivalryKey("NOTRE DAME", "STANFORD"):      0.6,
	rivalryKey("TCU", "TEXAS TECH"):           0.6,
}

func rivalryKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func rivalryIntensity(a, b string) float64 {
	return rivalries[rivalryKey(a, b)]
}

// desperationIndex measures how badly each side needs this particular
// win: bowl eligibility on the line, playoff positioning, and the
// general late-season squeeze.
type desperationIndex struct {
	weight float64
}

func newDesperationIndex(weight float64) *desperationIndex {
	return &desperationIndex{weight: weight}
}

func (f *desperationIndex) Name() string                 { return "desperation_index" }
func (f *desperationIndex) Category() core.Category      { return core.CategorySituational }
func (f *desperationIndex) Weight() float64              { return f.weight }
func (f *desperationIndex) OutputRange() (float64, float64) { return -2.0, 2.0 }

func (f *desperationIndex) Compute(gc *core.GameContext) (float64, error) {
	home := desperation(gc.Home.Record, gc.Week)
	away := desperation(gc.Away.Record, gc.Week)
	return (home - away) * 4.0, nil
}

// desperation scores one team's urgency on [0, 1]. A team with no
// decided games stays at the neutral baseline.
func desperation(rec core.WinRecord, week int) float64 {
	d := 0.5
	if rec.Games() == 0 {
		return d
	}
	// Bowl eligibility still reachable but not secured late in the year.
	if week >= 8 && rec.Wins < 6 && rec.Wins+(14-week) >= 6 {
		d += 0.4
	}
	// Playoff contenders protect their position down the stretch.
	if week >= 8 && rec.WinPct >= 0.8 {
		d += 0.3
	}
	if week >= 11 {
		d += 0.3
	}
	return clamp(d, 0, 1)
}

func (f *desperationIndex) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.5:
		return fmt.Sprintf("%s has significantly more at stake", gc.HomeTeam)
	case value < -0.5:
		return fmt.Sprintf("%s has significantly more at stake", gc.AwayTeam)
	default:
		return "Comparable stakes for both teams"
	}
}

// revengeGame detects a rematch motivation: a team that already lost to
// this opponent earlier in the season, amplified when the matchup is a
// named rivalry.
type revengeGame struct {
	weight float64
}

func newRevengeGame(weight float64) *revengeGame {
	return &revengeGame{weight: weight}
}

func (f *revengeGame) Name() string                 { return "revenge_game" }
func (f *revengeGame) Category() core.Category      { return core.CategorySituational }
func (f *revengeGame) Weight() float64              { return f.weight }
func (f *revengeGame) OutputRange() (float64, float64) { return -1.5, 1.5 }

func (f *revengeGame) Compute(gc *core.GameContext) (float64, error) {
	home := revengeScore(gc.Home, gc.AwayTeam)
	away := revengeScore(gc.Away, gc.HomeTeam)
	return home - away, nil
}

func revengeScore(team core.TeamContext, opponent string) float64 {
	s := 0.0
	for _, g := range team.Schedule {
		if g.Completed && g.Opponent == opponent && g.Result == "L" {
			s += 0.5
			break
		}
	}
	if s > 0 {
		s += rivalryIntensity(team.Name, opponent) * 0.5
	}
	return s
}

func (f *revengeGame) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0:
		return fmt.Sprintf("%s seeking revenge for an earlier loss", gc.HomeTeam)
	case value < 0:
		return fmt.Sprintf("%s seeking revenge for an earlier loss", gc.AwayTeam)
	default:
		return "No revenge angle in this matchup"
	}
}

// lookaheadSandwich scores the classic trap spot: a big rivalry game
// looming next on the schedule, or an emotional win last week.
type lookaheadSandwich struct {
	weight float64
}

func newLookaheadSandwich(weight float64) *lookaheadSandwich {
	return &lookaheadSandwich{weight: weight}
}

func (f *lookaheadSandwich) Name() string                 { return "lookahead_sandwich" }
func (f *lookaheadSandwich) Category() core.Category      { return core.CategorySituational }
func (f *lookaheadSandwich) Weight() float64              { return f.weight }
func (f *lookaheadSandwich) OutputRange() (float64, float64) { return -2.0, 2.0 }

func (f *lookaheadSandwich) Compute(gc *core.GameContext) (float64, error) {
	home := distraction(gc.Home, gc.Week)
	away := distraction(gc.Away, gc.Week)
	// A distracted away side shifts the projection toward home.
	return (away - home) * 2.0, nil
}

// distraction combines the lookahead pull of upcoming games with the
// letdown risk after an emotional win.
func distraction(team core.TeamContext, week int) float64 {
	lookahead := 0.0
	letdown := 0.0
	for _, g := range team.Schedule {
		if g.Week > week && g.Week <= week+2 {
			importance := 0.5 + rivalryIntensity(team.Name, g.Opponent)*0.5
			weeksAhead := float64(g.Week - week)
			if pull := importance / weeksAhead; pull > lookahead {
				lookahead = pull
			}
		}
		if g.Week == week-1 && g.Completed && g.Result == "W" {
			letdown = rivalryIntensity(team.Name, g.Opponent)
		}
	}
	return lookahead*0.6 + letdown*0.4
}

func (f *lookaheadSandwich) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0.3:
		return fmt.Sprintf("%s in a potential trap spot", gc.AwayTeam)
	case value < -0.3:
		return fmt.Sprintf("%s in a potential trap spot", gc.HomeTeam)
	default:
		return "No significant lookahead or letdown spots"
	}
}

// statementOpportunity captures the motivational bump for a clear
// underdog with a chance to make a statement against a far stronger
// opponent, especially at home and late in the year.
type statementOpportunity struct {
	weight float64
}

func newStatementOpportunity(weight float64) *statementOpportunity {
	return &statementOpportunity{weight: weight}
}

func (f *statementOpportunity) Name() string                 { return "statement_opportunity" }
func (f *statementOpportunity) Category() core.Category      { return core.CategorySituational }
func (f *statementOpportunity) Weight() float64              { return f.weight }
func (f *statementOpportunity) OutputRange() (float64, float64) { return -1.5, 1.5 }

func (f *statementOpportunity) Compute(gc *core.GameContext) (float64, error) {
	home := statementScore(gc.Home.Record, gc.Away.Record, true, gc.Week)
	away := statementScore(gc.Away.Record, gc.Home.Record, false, gc.Week)
	return home - away, nil
}

func statementScore(own, opp core.WinRecord, home bool, week int) float64 {
	if own.Games() == 0 || opp.Games() == 0 {
		return 0
	}
	gap := opp.WinPct - own.WinPct
	if gap < 0.3 {
		return 0
	}
	s := 0.4
	if home {
		s += 0.2
	}
	if week >= 10 {
		s += 0.2
	}
	return s
}

func (f *statementOpportunity) Explain(gc *core.GameContext, value float64) string {
	switch {
	case value > 0:
		return fmt.Sprintf("Statement opportunity for %s against a stronger opponent", gc.HomeTeam)
	case value < 0:
		return fmt.Sprintf("Statement opportunity for %s against a stronger opponent", gc.AwayTeam)
	default:
		return "No statement game dynamic"
	}
}
