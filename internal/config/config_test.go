package config

import (
	"testing"
	"time"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MARKETSIM_API_ADDR", "")
	cfg := LoadAPIFromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("default addr: %q", cfg.Addr)
	}
	if cfg.Sim.Companies != 20 {
		t.Fatalf("default companies: %d", cfg.Sim.Companies)
	}
	if cfg.TickEvery != 0 {
		t.Fatalf("api ticker should default off, got %v", cfg.TickEvery)
	}
}

func TestPortOverridesAddr(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg := LoadAPIFromEnv()
	if cfg.Addr != ":9000" {
		t.Fatalf("PORT not honored: %q", cfg.Addr)
	}
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("MARKETSIM_SEED", "42")
	t.Setenv("MARKETSIM_TICK_EVERY", "250ms")
	t.Setenv("MARKETSIM_ORACLE_URL", "http://oracle:9090/")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load worker: %v", err)
	}
	if cfg.Sim.Seed != 42 {
		t.Fatalf("seed: %d", cfg.Sim.Seed)
	}
	if cfg.TickEvery != 250*time.Millisecond {
		t.Fatalf("tick every: %v", cfg.TickEvery)
	}
	if cfg.OracleURL != "http://oracle:9090" {
		t.Fatalf("oracle url should be trimmed: %q", cfg.OracleURL)
	}
}

func TestBadEnvFallsBack(t *testing.T) {
	t.Setenv("MARKETSIM_COMPANIES", "lots")
	t.Setenv("MARKETSIM_TICK_EVERY", "sometimes")
	cfg := LoadAPIFromEnv()
	if cfg.Sim.Companies != 20 {
		t.Fatalf("unparseable int should fall back: %d", cfg.Sim.Companies)
	}
	if cfg.TickEvery != 0 {
		t.Fatalf("unparseable duration should fall back: %v", cfg.TickEvery)
	}
}
