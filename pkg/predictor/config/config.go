// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file. Configuration is materialized
// once in main and passed explicitly to the components that need it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/gridironlab/cfbedge/pkg/predictor/edge"
	"github.com/gridironlab/cfbedge/pkg/predictor/engine"
	"github.com/gridironlab/cfbedge/pkg/predictor/factors"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel string
	HTTPAddr string

	// Slate handling for the daemon.
	SlatePath       string
	RescoreInterval time.Duration
	SlateRate       float64 // predictions per second while re-scoring

	Factors factors.Config
	Engine  engine.Config
	Edge    edge.Config
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:  getString("CFBEDGE_LOG_LEVEL", "info"),
		HTTPAddr:  getString("CFBEDGE_HTTP_ADDR", ":8090"),
		SlatePath: getString("CFBEDGE_SLATE_PATH", ""),
		Factors:   *factors.DefaultConfig(),
		Engine:    *engine.DefaultConfig(),
		Edge:      *edge.DefaultConfig(),
	}

	var err error
	if cfg.RescoreInterval, err = getDuration("CFBEDGE_RESCORE_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SlateRate, err = getFloat("CFBEDGE_SLATE_RATE", 20); err != nil {
		return Config{}, err
	}

	if cfg.Factors.CoachingWeight, err = getFloat("CFBEDGE_COACHING_WEIGHT", cfg.Factors.CoachingWeight); err != nil {
		return Config{}, err
	}
	if cfg.Factors.SituationalWeight, err = getFloat("CFBEDGE_SITUATIONAL_WEIGHT", cfg.Factors.SituationalWeight); err != nil {
		return Config{}, err
	}
	if cfg.Factors.MomentumWeight, err = getFloat("CFBEDGE_MOMENTUM_WEIGHT", cfg.Factors.MomentumWeight); err != nil {
		return Config{}, err
	}

	if cfg.Engine.EdgeThreshold, err = getFloat("CFBEDGE_EDGE_THRESHOLD", cfg.Engine.EdgeThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Edge.MinDataQuality, err = getFloat("CFBEDGE_MIN_DATA_QUALITY", cfg.Edge.MinDataQuality); err != nil {
		return Config{}, err
	}
	if cfg.Edge.MaxEdgeSize, err = getFloat("CFBEDGE_MAX_EDGE_SIZE", cfg.Edge.MaxEdgeSize); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every sub-configuration at startup so invalid
// weights or thresholds fail fast instead of skewing results.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address must not be empty")
	}
	if c.RescoreInterval < time.Second {
		return fmt.Errorf("rescore interval %v is too short", c.RescoreInterval)
	}
	if c.SlateRate <= 0 {
		return fmt.Errorf("slate rate must be positive, got %v", c.SlateRate)
	}
	if err := c.Factors.Validate(); err != nil {
		return fmt.Errorf("factor config: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if err := c.Edge.Validate(); err != nil {
		return fmt.Errorf("edge config: %w", err)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
