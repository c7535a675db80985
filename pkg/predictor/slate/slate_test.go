package slate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
	"github.com/gridironlab/cfbedge/pkg/market/odds"
	"github.com/gridironlab/cfbedge/pkg/market/teams"
)

const fixture = `[
  {
    "home_team": "Alabama Crimson Tide",
    "away_team": "Auburn",
    "week": 13,
    "data_quality": 0.85,
    "spread_quotes": [
      {"bookmaker": "fanduel", "spread": -3.5},
      {"bookmaker": "draftkings", "spread": -3.0},
      {"bookmaker": "smallbook", "spread": -4.0}
    ]
  },
  {
    "home_team": "Georgia",
    "away_team": "Florida",
    "week": 13,
    "market_spread": -7.0,
    "spread_quotes": [{"bookmaker": "fanduel", "spread": -2.0}]
  },
  {
    "home_team": "Not A Real School",
    "away_team": "Georgia",
    "week": 13
  }
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slate.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadResolvesTeamsAndLines(t *testing.T) {
	games, err := Load(writeFixture(t), teams.NewNormalizer(), odds.NewAggregator(nil), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(games) != 2 {
		t.Fatalf("expected 2 resolved games (1 skipped), got %d", len(games))
	}

	first := games[0]
	if first.HomeTeam != "ALABAMA" || first.AwayTeam != "AUBURN" {
		t.Errorf("teams not normalized: %s vs %s", first.HomeTeam, first.AwayTeam)
	}
	if first.MarketSpread == nil {
		t.Fatal("quotes should produce a market spread")
	}
	// (-3.5*1.0 + -3.0*0.5 + -4.0*0.1) / 1.6 = -3.375, rounds to -3.5
	if *first.MarketSpread != -3.5 {
		t.Errorf("consensus spread = %v, want -3.5", *first.MarketSpread)
	}

	second := games[1]
	if second.MarketSpread == nil || *second.MarketSpread != -7.0 {
		t.Errorf("explicit market_spread must win over quotes, got %v", second.MarketSpread)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), teams.NewNormalizer(), odds.NewAggregator(nil), nil, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveRejectsUnknownTeam(t *testing.T) {
	g := Game{GameContext: core.GameContext{HomeTeam: "Nowhere State", AwayTeam: "Georgia"}}
	if _, err := Resolve(g, teams.NewNormalizer(), odds.NewAggregator(nil), nil); err == nil {
		t.Fatal("expected error for unknown team")
	}
}
