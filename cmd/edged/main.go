// edged is the contrarian spread scoring daemon. It re-scores a slate
// of games on an interval and exposes the results over HTTP and a
// WebSocket stream.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gridironlab/cfbedge/pkg/market/odds"
	"github.com/gridironlab/cfbedge/pkg/market/teams"
	"github.com/gridironlab/cfbedge/pkg/predictor/config"
	"github.com/gridironlab/cfbedge/pkg/predictor/confidence"
	"github.com/gridironlab/cfbedge/pkg/predictor/edge"
	"github.com/gridironlab/cfbedge/pkg/predictor/engine"
	"github.com/gridironlab/cfbedge/pkg/predictor/factors"
	"github.com/gridironlab/cfbedge/pkg/predictor/metrics"
	"github.com/gridironlab/cfbedge/pkg/predictor/slate"
	"github.com/gridironlab/cfbedge/pkg/predictor/streaming"
)

var (
	// Flags override the environment configuration.
	httpAddr  = flag.String("http", "", "HTTP server address (default from CFBEDGE_HTTP_ADDR)")
	slatePath = flag.String("slate", "", "Slate fixture file (default from CFBEDGE_SLATE_PATH)")
	interval  = flag.Duration("interval", 0, "Re-score interval (default from CFBEDGE_RESCORE_INTERVAL)")
	runOnce   = flag.Bool("once", false, "Score the slate once and exit")
	verbose   = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *slatePath != "" {
		cfg.SlatePath = *slatePath
	}
	if *interval > 0 {
		cfg.RescoreInterval = *interval
	}

	logger := newLogger(cfg.LogLevel, *verbose)
	logger.Info().Str("http", cfg.HTTPAddr).Str("slate", cfg.SlatePath).Msg("starting edged")

	d, err := newDaemon(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize daemon")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go d.hub.Run()
	go d.startHTTP()

	if *runOnce {
		d.scoreSlate(ctx)
		return
	}

	go d.loop(ctx, cfg.RescoreInterval)

	<-sigCh
	logger.Info().Msg("shutting down")
	cancel()

	stats := d.engine.Stats()
	logger.Info().
		Uint64("predictions", stats.Total).
		Uint64("failed", stats.Failed).
		Dur("avg_latency", stats.AvgLatency).
		Msg("final stats")
}

func newLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

type daemon struct {
	cfg        config.Config
	log        zerolog.Logger
	metrics    *metrics.EngineMetrics
	hub        *streaming.Hub
	engine     *engine.Engine
	confidence *confidence.Calculator
	detector   *edge.Detector
	aggregator *odds.Aggregator
	normalizer *teams.Normalizer
	limiter    *rate.Limiter

	mu          sync.RWMutex
	lastSummary *edge.SlateSummary
	lastRun     time.Time
}

func newDaemon(cfg config.Config, logger zerolog.Logger) (*daemon, error) {
	m := metrics.NewEngineMetrics()

	registry, err := factors.NewRegistry(&cfg.Factors, logger)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(&cfg.Engine, registry, m, logger)
	if err != nil {
		return nil, err
	}
	detector, err := edge.NewDetector(&cfg.Edge, m, logger)
	if err != nil {
		return nil, err
	}

	return &daemon{
		cfg:        cfg,
		log:        logger,
		metrics:    m,
		hub:        streaming.NewHub(logger),
		engine:     eng,
		confidence: confidence.NewCalculator(logger),
		detector:   detector,
		aggregator: odds.NewAggregator(nil),
		normalizer: teams.NewNormalizer(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.SlateRate), 1),
	}, nil
}

func (d *daemon) loop(ctx context.Context, interval time.Duration) {
	d.scoreSlate(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.scoreSlate(ctx)
		}
	}
}

// scoreSlate loads the slate fixture, scores every game, and publishes
// the results.
func (d *daemon) scoreSlate(ctx context.Context) {
	if d.cfg.SlatePath == "" {
		d.log.Warn().Msg("no slate configured, nothing to score")
		return
	}
	start := time.Now()

	games, err := slate.Load(d.cfg.SlatePath, d.normalizer, d.aggregator, d.metrics, d.log)
	if err != nil {
		d.log.Error().Err(err).Msg("slate load failed")
		d.hub.BroadcastError(err, "slate_load")
		d.metrics.RecordSlate("error", time.Since(start).Seconds(), 0)
		return
	}

	scored := make([]edge.ScoredGame, 0, len(games))
	for i := range games {
		if err := d.limiter.Wait(ctx); err != nil {
			return
		}
		gc := &games[i]
		pred := d.engine.Predict(gc)
		assessment := d.confidence.Assess(pred, gc)
		pred.Confidence = assessment.Score

		d.hub.BroadcastPrediction(pred)
		scored = append(scored, edge.ScoredGame{Prediction: pred, Confidence: assessment})
	}

	summary := d.detector.AnalyzeSlate(scored)
	for _, opp := range summary.TopOpportunities {
		d.hub.BroadcastEdge(opp.Classification)
	}
	d.hub.BroadcastSlate(summary)
	d.metrics.RecordSlate("ok", time.Since(start).Seconds(), summary.EdgeRate)

	d.mu.Lock()
	d.lastSummary = &summary
	d.lastRun = time.Now().UTC()
	d.mu.Unlock()

	d.log.Info().
		Int("games", summary.Total).
		Float64("edge_rate", summary.EdgeRate).
		Dur("elapsed", time.Since(start)).
		Msg("slate scored")
}

func (d *daemon) startHTTP() {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		d.mu.RLock()
		lastRun := d.lastRun
		d.mu.RUnlock()
		stats := d.engine.Stats()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions_total":  stats.Total,
			"predictions_failed": stats.Failed,
			"avg_latency_ms":     float64(stats.AvgLatency.Microseconds()) / 1000,
			"stream_clients":     d.hub.ClientCount(),
			"last_run":           lastRun,
		})
	})

	mux.HandleFunc("/slate", func(w http.ResponseWriter, r *http.Request) {
		d.mu.RLock()
		summary := d.lastSummary
		d.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if summary == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "no slate scored yet"})
			return
		}
		json.NewEncoder(w).Encode(summary)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", d.hub.ServeWS)

	server := &http.Server{
		Addr:         d.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	d.log.Info().Str("addr", d.cfg.HTTPAddr).Msg("http server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		d.log.Error().Err(err).Msg("http server error")
	}
}
