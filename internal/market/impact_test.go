package market

import (
	"math"
	"testing"
)

func impactCompany() *Company {
	return &Company{
		Name: "Granite Logistics", Ticker: "GRNT",
		Stage: StageMature, Risk: RiskMedium,
		Price: 50, BaseVol: 0.02,
		SharesOutstanding:  10_000_000,
		PendingSplitFactor: 1,
	}
}

func TestTradeImpactDirection(t *testing.T) {
	buy := impactCompany()
	if got := ApplyTradeImpact(buy, 100_000, SideBuy); got <= 0 {
		t.Fatalf("buy impact should be positive, got %v", got)
	}
	if buy.Price <= 50 {
		t.Fatalf("buy should push the price up, got %v", buy.Price)
	}

	sell := impactCompany()
	if got := ApplyTradeImpact(sell, 100_000, SideSell); got >= 0 {
		t.Fatalf("sell impact should be negative, got %v", got)
	}
	if sell.Price >= 50 {
		t.Fatalf("sell should push the price down, got %v", sell.Price)
	}
}

func TestTradeImpactBounded(t *testing.T) {
	for _, shares := range []float64{1, 1_000, 10_000_000, 1e12} {
		c := impactCompany()
		imp := ApplyTradeImpact(c, shares, SideBuy)
		if math.Abs(imp) > 0.06 {
			t.Fatalf("impact exceeds cap for %v shares: %v", shares, imp)
		}
	}
}

func TestTradeImpactMonotonicInSize(t *testing.T) {
	small := ApplyTradeImpact(impactCompany(), 10_000, SideBuy)
	large := ApplyTradeImpact(impactCompany(), 1_000_000, SideBuy)
	if large <= small {
		t.Fatalf("larger orders must move the price more: %v vs %v", small, large)
	}
}

func TestTradeImpactNoops(t *testing.T) {
	c := impactCompany()
	if imp := ApplyTradeImpact(c, 0, SideBuy); imp != 0 || c.Price != 50 {
		t.Fatalf("zero-share order must be a no-op: imp=%v price=%v", imp, c.Price)
	}
	c.Bankrupt = true
	if imp := ApplyTradeImpact(c, 1_000, SideSell); imp != 0 || c.Price != 50 {
		t.Fatalf("trading a bankrupt name must be a no-op: imp=%v price=%v", imp, c.Price)
	}
}

func TestTradeImpactRespectsFloor(t *testing.T) {
	c := impactCompany()
	c.Price = 0.51
	ApplyTradeImpact(c, 1e12, SideSell)
	if c.Price < PriceFloor {
		t.Fatalf("sell impact broke the price floor: %v", c.Price)
	}
}

func TestParseSide(t *testing.T) {
	if s, ok := ParseSide("buy"); !ok || s != SideBuy {
		t.Fatalf("ParseSide(buy) = %v, %v", s, ok)
	}
	if s, ok := ParseSide(" SELL "); !ok || s != SideSell {
		t.Fatalf("ParseSide(SELL) = %v, %v", s, ok)
	}
	if _, ok := ParseSide("short"); ok {
		t.Fatal("ParseSide should reject unknown sides")
	}
}
