package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketsim/internal/api"
	"marketsim/internal/config"
	"marketsim/internal/market"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAPIFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	universe := market.New(market.Config{
		Seed:        cfg.Sim.Seed,
		Companies:   cfg.Sim.Companies,
		WarmupWeeks: cfg.Sim.WarmupWeeks,
	})
	logger.Info("universe ready",
		"companies", len(universe.Companies),
		"sectors", len(universe.Sectors),
		"week", universe.Week())

	server := api.New(cfg, logger, universe)

	if cfg.TickEvery > 0 {
		tickerStop := make(chan struct{})
		defer close(tickerStop)
		go server.RunTicker(cfg.TickEvery, tickerStop)
		logger.Info("background ticker enabled", "every", cfg.TickEvery.String())
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("simd listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
