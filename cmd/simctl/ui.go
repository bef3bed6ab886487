package main

import (
	"fmt"
	"strings"

	cl "marketsim/internal/cli"
	"marketsim/internal/market"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func renderMarket(m cl.MarketState) {
	accent.Printf("\n== MARKET (week %d) ==\n", m.Macro.Week)
	fmt.Printf("Interest rate:    %s\n", colorizePercent(m.Macro.InterestRate*100))
	fmt.Printf("Inflation:        %s\n", colorizePercent(m.Macro.Inflation*100))
	fmt.Printf("Sentiment:        %s\n", colorizeSigned(m.Macro.Sentiment))
	fmt.Printf("Volatility:       %.4f\n", m.Macro.Volatility)
	fmt.Printf("Implied multiple: %.1fx\n", m.ImpliedMultiple)
	fmt.Println()
}

func renderSectors(sectors []market.Sector) {
	accent.Println("\n== SECTORS ==")
	fmt.Printf("%-14s %12s %10s %10s %10s\n", "SECTOR", "GROWTH/WK", "SENT", "VOL", "PE ADJ")
	for _, s := range sectors {
		fmt.Printf("%-14s %12s %10s %10.4f %10.2f\n",
			s.Name,
			colorizePercent(s.BaselineGrowth*100),
			colorizeSigned(s.Sentiment),
			s.Volatility,
			s.PEAdjust,
		)
	}
	fmt.Println()
}

func renderCompanies(snaps []market.Snapshot) {
	accent.Println("\n== COMPANIES ==")
	if len(snaps) == 0 {
		printInfo("No companies.")
		return
	}
	fmt.Printf("%-7s %-24s %-12s %-8s %10s %8s %8s %9s %6s\n",
		"TICKER", "NAME", "SECTOR", "STAGE", "PRICE", "P/E", "P/S", "MARGIN", "STATE")
	for _, s := range snaps {
		state := "ok"
		if s.Bankrupt {
			state = danger.Sprint("dead")
		}
		fmt.Printf("%-7s %-24s %-12s %-8s %10.2f %8s %8.2f %9s %6s\n",
			s.Ticker,
			truncate(s.Name, 24),
			truncate(s.Sector, 12),
			s.Stage,
			s.Price,
			formatPE(s.PETTM),
			s.PSTTM,
			colorizePercent(s.Margin*100),
			state,
		)
	}
	fmt.Println()
}

func renderCompanyDetail(s market.Snapshot) {
	accent.Printf("\n== %s (%s) ==\n", s.Ticker, s.Name)
	fmt.Printf("Sector:      %s\n", s.Sector)
	fmt.Printf("Stage/Risk:  %s / %s\n", s.Stage, s.Risk)
	fmt.Printf("Price:       %.2f\n", s.Price)
	fmt.Printf("P/E (TTM):   %s\n", formatPE(s.PETTM))
	fmt.Printf("P/S (TTM):   %.2f\n", s.PSTTM)
	fmt.Printf("Revenue TTM: %.0f\n", s.RevenueTTM)
	fmt.Printf("Margin:      %s\n", colorizePercent(s.Margin*100))
	fmt.Printf("Leverage:    %.2f\n", s.Leverage)
	fmt.Printf("Sentiment:   %s\n", colorizeSigned(s.Sentiment))
	if s.Bankrupt {
		danger.Println("Status:      BANKRUPT")
	}
	fmt.Println()
}

func renderHistory(ticker string, history []market.HistoryPoint, last int) {
	accent.Printf("\n== %s HISTORY ==\n", ticker)
	if len(history) == 0 {
		printInfo("No history yet.")
		return
	}
	start := 0
	if last > 0 && len(history) > last {
		start = len(history) - last
	}
	fmt.Printf("%-6s %10s %12s %12s %10s %8s\n", "WEEK", "PRICE", "REVENUE", "NET INC", "EPS", "SENT")
	for _, h := range history[start:] {
		fmt.Printf("%-6d %10.2f %12.0f %12.0f %10.2f %8.2f\n",
			h.Week, h.Price, h.Revenue, h.NetIncome, h.EPS, h.Sentiment)
	}
	fmt.Println()
}

func renderEvents(ticker string, events []market.Event) {
	accent.Printf("\n== %s EVENTS ==\n", ticker)
	if len(events) == 0 {
		printInfo("No events yet.")
		return
	}
	fmt.Printf("%-6s %-14s %s\n", "WEEK", "KIND", "HEADLINE")
	for _, e := range events {
		kind := string(e.Kind)
		switch e.Kind {
		case market.EventDistress, market.EventBankruptcy:
			kind = danger.Sprint(kind)
		case market.EventDividend, market.EventBuyback:
			kind = success.Sprint(kind)
		}
		fmt.Printf("%-6d %-14s %s\n", e.Week, kind, e.Headline)
	}
	fmt.Println()
}

func renderTrade(t cl.TradeResult) {
	accent.Printf("\n== TRADE %s ==\n", t.Ticker)
	if t.Bankrupt {
		warn.Println("Company is bankrupt; trade had no effect.")
		fmt.Println()
		return
	}
	fmt.Printf("Impact: %s\n", colorizePercent(t.Impact*100))
	fmt.Printf("Price:  %.2f\n", t.Price)
	fmt.Println()
}

func formatPE(pe *float64) string {
	if pe == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *pe)
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeSigned(v float64) string {
	text := fmt.Sprintf("%+.2f", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
