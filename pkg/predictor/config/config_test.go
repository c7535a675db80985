package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8090" {
		t.Errorf("HTTPAddr = %q, want :8090", cfg.HTTPAddr)
	}
	if cfg.RescoreInterval != 5*time.Minute {
		t.Errorf("RescoreInterval = %v, want 5m", cfg.RescoreInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CFBEDGE_HTTP_ADDR", ":9999")
	t.Setenv("CFBEDGE_RESCORE_INTERVAL", "90s")
	t.Setenv("CFBEDGE_MOMENTUM_WEIGHT", "0.20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.RescoreInterval != 90*time.Second {
		t.Errorf("RescoreInterval = %v, want 90s", cfg.RescoreInterval)
	}
}

func TestLoadRejectsBrokenWeights(t *testing.T) {
	t.Setenv("CFBEDGE_COACHING_WEIGHT", "0.9")

	if _, err := Load(); err == nil {
		t.Fatal("weights that no longer sum to 1.0 must fail validation")
	}
}

func TestLoadRejectsUnparseableValues(t *testing.T) {
	t.Setenv("CFBEDGE_EDGE_THRESHOLD", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateInterval(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.RescoreInterval = 100 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second rescore interval must be rejected")
	}
}
