package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketsim/internal/config"
	"marketsim/internal/db"
	"marketsim/internal/market"
	"marketsim/internal/oracle"
	"marketsim/internal/store"
)

// trader is the external portfolio collaborator: it owns cash and holdings,
// asks the oracle what to do each tick, and reconciles splits through the
// one-shot split factor before acting.
type trader struct {
	cash     float64
	holdings map[string]float64
}

func (t *trader) reconcileSplits(u *market.Universe) {
	for ticker, shares := range t.holdings {
		c, ok := u.Company(ticker)
		if !ok {
			continue
		}
		if f := c.ConsumeSplitFactor(); f != 1 {
			t.holdings[ticker] = shares * f
		}
	}
}

// execute converts the oracle's currency amount into a whole-share quantity
// at current price, settles it against the ledger, then pushes the fill's
// price impact into the simulation.
func (t *trader) execute(u *market.Universe, ins oracle.Instruction, logger *slog.Logger) {
	c, ok := u.Company(ins.Ticker)
	if !ok || c.Bankrupt || c.Price <= 0 {
		return
	}
	var shares float64
	switch ins.Side {
	case string(market.SideBuy):
		budget := math.Min(ins.Amount, t.cash)
		shares = math.Floor(budget / c.Price)
		if shares <= 0 {
			return
		}
		t.cash -= shares * c.Price
		t.holdings[c.Ticker] += shares
		market.ApplyTradeImpact(c, shares, market.SideBuy)
	case string(market.SideSell):
		shares = math.Min(math.Floor(ins.Amount/c.Price), t.holdings[c.Ticker])
		if shares <= 0 {
			return
		}
		t.cash += shares * c.Price
		t.holdings[c.Ticker] -= shares
		if t.holdings[c.Ticker] == 0 {
			delete(t.holdings, c.Ticker)
		}
		market.ApplyTradeImpact(c, shares, market.SideSell)
	}
	logger.Info("trade executed", "ticker", c.Ticker, "side", ins.Side, "shares", shares, "cash", t.cash)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	universe := market.New(market.Config{
		Seed:        cfg.Sim.Seed,
		Companies:   cfg.Sim.Companies,
		WarmupWeeks: cfg.Sim.WarmupWeeks,
	})

	var archive *store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		archive = store.New(pool)
		if err := archive.EnsureSchema(ctx); err != nil {
			logger.Error("schema init failed", "err", err)
			os.Exit(1)
		}
	}

	var oracleClient *oracle.Client
	if cfg.OracleURL != "" {
		oracleClient = oracle.New(cfg.OracleURL, cfg.OracleMaxOrders)
	}
	bot := &trader{cash: cfg.TraderCash, holdings: map[string]float64{}}

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("MARKETSIM_WORKER_RUN_ONCE")), "true")
	if runOnce {
		runTick(ctx, universe, archive, oracleClient, bot, logger)
		logger.Info("worker run-once completed", "week", universe.Week())
		return
	}

	ticker := time.NewTicker(cfg.TickEvery)
	defer ticker.Stop()

	logger.Info("worker started",
		"tick_every", cfg.TickEvery.String(),
		"archiving", archive != nil,
		"oracle", oracleClient != nil)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown", "week", universe.Week())
			return
		case <-ticker.C:
			runTick(ctx, universe, archive, oracleClient, bot, logger)
		}
	}
}

func runTick(ctx context.Context, u *market.Universe, archive *store.Store, oracleClient *oracle.Client, bot *trader, logger *slog.Logger) {
	u.Tick()
	week := u.Week()

	if archive != nil {
		if err := archive.ArchiveTick(ctx, u); err != nil {
			logger.Error("archive failed", "week", week, "err", err)
		}
	}

	if oracleClient != nil {
		bot.reconcileSplits(u)
		instructions, err := oracleClient.Decide(ctx, oracle.Request{
			Week:      week,
			Cash:      bot.cash,
			Holdings:  bot.holdings,
			Companies: u.Snapshots(),
		})
		if err != nil {
			logger.Warn("oracle unavailable, skipping trades", "week", week, "err", err)
		}
		for _, ins := range instructions {
			bot.execute(u, ins, logger)
		}
	}

	logger.Info("tick complete", "week", week)
}
