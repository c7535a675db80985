// predict scores a single matchup or a full slate from the command
// line and prints the prediction, confidence assessment, and edge
// classification as text or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gridironlab/cfbedge/core"
	"github.com/gridironlab/cfbedge/pkg/market/odds"
	"github.com/gridironlab/cfbedge/pkg/market/teams"
	"github.com/gridironlab/cfbedge/pkg/predictor/config"
	"github.com/gridironlab/cfbedge/pkg/predictor/confidence"
	"github.com/gridironlab/cfbedge/pkg/predictor/edge"
	"github.com/gridironlab/cfbedge/pkg/predictor/engine"
	"github.com/gridironlab/cfbedge/pkg/predictor/factors"
	"github.com/gridironlab/cfbedge/pkg/predictor/slate"
)

var (
	homeTeam    = flag.String("home", "", "Home team name")
	awayTeam    = flag.String("away", "", "Away team name")
	week        = flag.Int("week", 0, "Week of season (0 = unknown)")
	spread      = flag.String("spread", "", "Market spread, negative = home favored (empty = no line)")
	contextFile = flag.String("context", "", "JSON file with a full game context")
	slateFile   = flag.String("slate", "", "JSON slate file; scores every game")
	minEdge     = flag.Float64("min-edge", 0, "Only print slate games with at least this edge size")
	jsonOut     = flag.Bool("json", false, "Emit JSON instead of text")
	verbose     = flag.Bool("verbose", false, "Verbose logging")
)

// report bundles the three result records for one matchup.
type report struct {
	Prediction core.PredictionResult     `json:"prediction"`
	Confidence core.ConfidenceAssessment `json:"confidence"`
	Edge       core.EdgeClassification   `json:"edge"`
}

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "invalid configuration", err)
	}

	s, err := newScorer(cfg, logger)
	if err != nil {
		fatal(logger, "failed to initialize", err)
	}

	if *slateFile != "" {
		if err := s.runSlate(*slateFile); err != nil {
			fatal(logger, "slate scoring failed", err)
		}
		return
	}

	gc, err := s.buildContext()
	if err != nil {
		fatal(logger, "invalid matchup", err)
	}

	rep := s.score(gc)
	if *jsonOut {
		printJSON(rep)
	} else {
		printReport(rep)
	}
}

func fatal(logger zerolog.Logger, msg string, err error) {
	logger.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

type scorer struct {
	normalizer *teams.Normalizer
	aggregator *odds.Aggregator
	engine     *engine.Engine
	confidence *confidence.Calculator
	detector   *edge.Detector
	limiter    *rate.Limiter
	log        zerolog.Logger
}

func newScorer(cfg config.Config, logger zerolog.Logger) (*scorer, error) {
	registry, err := factors.NewRegistry(&cfg.Factors, logger)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(&cfg.Engine, registry, nil, logger)
	if err != nil {
		return nil, err
	}
	detector, err := edge.NewDetector(&cfg.Edge, nil, logger)
	if err != nil {
		return nil, err
	}
	return &scorer{
		normalizer: teams.NewNormalizer(),
		aggregator: odds.NewAggregator(nil),
		engine:     eng,
		confidence: confidence.NewCalculator(logger),
		detector:   detector,
		limiter:    rate.NewLimiter(rate.Limit(cfg.SlateRate), 1),
		log:        logger,
	}, nil
}

// buildContext assembles the game context from the context file and
// flags. Flags override file values.
func (s *scorer) buildContext() (*core.GameContext, error) {
	var game slate.Game

	if *contextFile != "" {
		raw, err := os.ReadFile(*contextFile)
		if err != nil {
			return nil, fmt.Errorf("read context: %w", err)
		}
		if err := json.Unmarshal(raw, &game); err != nil {
			return nil, fmt.Errorf("parse context: %w", err)
		}
	}

	if *homeTeam != "" {
		game.HomeTeam = *homeTeam
	}
	if *awayTeam != "" {
		game.AwayTeam = *awayTeam
	}
	if *week > 0 {
		game.Week = *week
	}
	if *spread != "" {
		v, err := strconv.ParseFloat(*spread, 64)
		if err != nil {
			return nil, fmt.Errorf("spread: %w", err)
		}
		game.MarketSpread = core.Float64Ptr(v)
	}
	if game.HomeTeam == "" || game.AwayTeam == "" {
		return nil, fmt.Errorf("both -home and -away are required (or a -context file)")
	}
	if game.DataQuality == 0 {
		game.DataQuality = 0.5
	}

	gc, err := slate.Resolve(game, s.normalizer, s.aggregator, nil)
	if err != nil {
		return nil, err
	}
	return &gc, nil
}

func (s *scorer) score(gc *core.GameContext) report {
	pred := s.engine.Predict(gc)
	assessment := s.confidence.Assess(pred, gc)
	pred.Confidence = assessment.Score
	cls := s.detector.Detect(pred, assessment)
	return report{Prediction: pred, Confidence: assessment, Edge: cls}
}

func (s *scorer) runSlate(path string) error {
	games, err := slate.Load(path, s.normalizer, s.aggregator, nil, s.log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var scored []edge.ScoredGame
	var reports []report
	for i := range games {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		rep := s.score(&games[i])
		reports = append(reports, rep)
		scored = append(scored, edge.ScoredGame{Prediction: rep.Prediction, Confidence: rep.Confidence})
	}
	summary := s.detector.AnalyzeSlate(scored)

	if *jsonOut {
		printJSON(map[string]interface{}{"summary": summary, "games": reports})
		return nil
	}

	fmt.Printf("Slate: %d games, edge rate %.0f%%\n", summary.Total, summary.EdgeRate*100)
	for state, n := range summary.Counts {
		fmt.Printf("  %-20s %d\n", state, n)
	}
	fmt.Println()
	for _, rep := range reports {
		if rep.Prediction.EdgeSize < *minEdge {
			continue
		}
		printReport(rep)
		fmt.Println()
	}
	return nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func printReport(rep report) {
	p := rep.Prediction
	fmt.Printf("%s vs %s (week %d)\n", p.AwayTeam, p.HomeTeam, p.Week)
	if p.ConsensusSpread != nil && p.ContrarianSpread != nil {
		fmt.Printf("  market %+.1f  model %+.1f  edge %.1f (%s)\n",
			*p.ConsensusSpread, *p.ContrarianSpread, p.EdgeSize, p.EdgeDirection)
	}
	fmt.Printf("  prediction: %s  confidence: %.2f (%s)\n", p.PredictionType, rep.Confidence.Score, rep.Confidence.Level)
	fmt.Printf("  edge state: %s\n", rep.Edge.Type)
	fmt.Printf("  action:     %s\n", rep.Edge.RecommendedAction)
	fmt.Printf("  why:        %s\n", rep.Edge.Explanation)
	if p.Err != "" {
		fmt.Printf("  error:      %s\n", p.Err)
	}
}
