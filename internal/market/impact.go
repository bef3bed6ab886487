package market

import (
	"math"
	"strings"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// impactBaselineVol is the volatility at which the illiquidity multiplier is
// neutral (1.0).
const impactBaselineVol = 0.02

// ParseSide normalizes a wire-format side string.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, true
	case "sell":
		return SideSell, true
	default:
		return "", false
	}
}

// ApplyTradeImpact nudges the price after an external fill of the given share
// quantity. Deterministic: no draws, callable any number of times between
// ticks, serialized per company by the caller. Returns the applied fraction.
func ApplyTradeImpact(c *Company, shares float64, side Side) float64 {
	if shares <= 0 || c.Bankrupt {
		return 0
	}
	relSize := shares / math.Max(1, c.SharesOutstanding)
	illiquidity := clamp(c.BaseVol/impactBaselineVol, 0.6, 1.8)
	impact := 0.6 * math.Sqrt(relSize) * illiquidity
	if side == SideSell {
		impact = -impact
	}
	impact = clamp(impact, -0.06, 0.06)
	c.Price = math.Max(PriceFloor, c.Price*(1+impact))
	return impact
}
