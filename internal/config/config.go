package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type SimConfig struct {
	Seed        uint32
	Companies   int
	WarmupWeeks int
}

type APIConfig struct {
	Addr      string
	Sim       SimConfig
	TickEvery time.Duration // 0 disables the background ticker
}

type WorkerConfig struct {
	Sim             SimConfig
	TickEvery       time.Duration
	DatabaseURL     string // empty disables archiving
	OracleURL       string // empty disables the external trader loop
	OracleMaxOrders int
	TraderCash      float64
}

type CLIConfig struct {
	APIBaseURL string
}

func loadSimFromEnv() SimConfig {
	return SimConfig{
		Seed:        uint32(envIntDefault("MARKETSIM_SEED", 0)),
		Companies:   envIntDefault("MARKETSIM_COMPANIES", 20),
		WarmupWeeks: envIntDefault("MARKETSIM_WARMUP_WEEKS", 0),
	}
}

func LoadAPIFromEnv() APIConfig {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MARKETSIM_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:      addr,
		Sim:       loadSimFromEnv(),
		TickEvery: envDurationDefault("MARKETSIM_TICK_EVERY", 0),
	}
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		Sim:             loadSimFromEnv(),
		TickEvery:       envDurationDefault("MARKETSIM_TICK_EVERY", 5*time.Second),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		OracleURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("MARKETSIM_ORACLE_URL")), "/"),
		OracleMaxOrders: envIntDefault("MARKETSIM_ORACLE_MAX_ORDERS", 10),
		TraderCash:      envFloatDefault("MARKETSIM_TRADER_CASH", 1_000_000),
	}
	if cfg.TickEvery <= 0 {
		return cfg, fmt.Errorf("MARKETSIM_TICK_EVERY must be positive for the worker")
	}
	if cfg.OracleMaxOrders < 0 {
		return cfg, fmt.Errorf("MARKETSIM_ORACLE_MAX_ORDERS must not be negative")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("SIMCTL_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
