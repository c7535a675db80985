// Package slate loads game-slate fixture files: JSON arrays of game
// contexts, each optionally carrying raw bookmaker quotes that the
// consensus aggregator reduces to a market line.
package slate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gridironlab/cfbedge/core"
	"github.com/gridironlab/cfbedge/pkg/market/odds"
	"github.com/gridironlab/cfbedge/pkg/market/teams"
	"github.com/gridironlab/cfbedge/pkg/predictor/metrics"
)

// Game is one slate entry. An explicit market_spread wins over quotes.
type Game struct {
	core.GameContext
	SpreadQuotes []odds.SpreadQuote `json:"spread_quotes,omitempty"`
	TotalQuotes  []odds.TotalQuote  `json:"total_quotes,omitempty"`
}

// Load reads and resolves a slate fixture. Games with unresolvable
// team names are dropped with a warning rather than failing the whole
// slate. The metrics collector may be nil.
func Load(path string, normalizer *teams.Normalizer, agg *odds.Aggregator, m *metrics.EngineMetrics, log zerolog.Logger) ([]core.GameContext, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slate: %w", err)
	}

	var games []Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("parse slate: %w", err)
	}

	out := make([]core.GameContext, 0, len(games))
	for _, g := range games {
		gc, err := Resolve(g, normalizer, agg, m)
		if err != nil {
			log.Warn().Err(err).Str("home", g.HomeTeam).Str("away", g.AwayTeam).Msg("skipping game")
			continue
		}
		out = append(out, gc)
	}

	log.Info().Int("games", len(out)).Int("skipped", len(games)-len(out)).Str("path", path).Msg("slate loaded")
	return out, nil
}

// Resolve normalizes one entry's team names and fills the market lines
// from quotes when they are not set explicitly.
func Resolve(g Game, normalizer *teams.Normalizer, agg *odds.Aggregator, m *metrics.EngineMetrics) (core.GameContext, error) {
	home, ok := normalizer.Normalize(g.HomeTeam)
	if !ok {
		return core.GameContext{}, fmt.Errorf("unknown home team %q", g.HomeTeam)
	}
	away, ok := normalizer.Normalize(g.AwayTeam)
	if !ok {
		return core.GameContext{}, fmt.Errorf("unknown away team %q", g.AwayTeam)
	}

	gc := g.GameContext
	gc.HomeTeam = home
	gc.AwayTeam = away
	gc.Home.Name = home
	gc.Away.Name = away

	if gc.MarketSpread == nil && len(g.SpreadQuotes) > 0 {
		line := agg.ConsensusSpread(g.SpreadQuotes)
		if line.Available {
			gc.MarketSpread = core.Float64Ptr(line.Points)
		}
		if m != nil {
			m.RecordConsensus(line.Books, line.Available)
		}
	}
	if gc.MarketTotal == nil && len(g.TotalQuotes) > 0 {
		if line := agg.ConsensusTotal(g.TotalQuotes); line.Available {
			gc.MarketTotal = core.Float64Ptr(line.Points)
		}
	}

	return gc, nil
}
