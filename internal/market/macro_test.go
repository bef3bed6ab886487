package market

import "testing"

func TestMacroStaysClamped(t *testing.T) {
	rng := NewRand(2024)
	m := NewMacro(rng)
	for i := 0; i < 3000; i++ {
		m.Update(rng)
		if m.Week != i+1 {
			t.Fatalf("week counter broke: got %d want %d", m.Week, i+1)
		}
		if m.InterestRate < macroRateFloor || m.InterestRate > macroRateCap {
			t.Fatalf("rate out of band at week %d: %v", m.Week, m.InterestRate)
		}
		if m.Inflation < macroInflFloor || m.Inflation > macroInflCap {
			t.Fatalf("inflation out of band at week %d: %v", m.Week, m.Inflation)
		}
		if m.Sentiment < -1 || m.Sentiment > 1 {
			t.Fatalf("sentiment out of band at week %d: %v", m.Week, m.Sentiment)
		}
		if m.Volatility < macroVolFloor || m.Volatility > macroVolCap {
			t.Fatalf("volatility out of band at week %d: %v", m.Week, m.Volatility)
		}
	}
}

func TestMacroShockBookkeeping(t *testing.T) {
	rng := NewRand(77)
	m := NewMacro(rng)
	shocked := 0
	for i := 0; i < 4000; i++ {
		m.Update(rng)
		if m.LastShock != 0 {
			shocked++
		}
	}
	if shocked == 0 {
		t.Fatal("no shocked week in 4000 updates at a 1% weekly probability")
	}
	if shocked > 200 {
		t.Fatalf("implausibly many shocked weeks: %d of 4000", shocked)
	}
}

func TestImpliedMarketMultiple(t *testing.T) {
	m := &Macro{}
	for rate := 0.0; rate <= 0.2; rate += 0.005 {
		m.InterestRate = rate
		mult := m.ImpliedMarketMultiple()
		if mult < 10 || mult > 34 {
			t.Fatalf("multiple out of [10,34] at rate %v: %v", rate, mult)
		}
	}
	m.InterestRate = 0.02
	low := m.ImpliedMarketMultiple()
	m.InterestRate = 0.08
	high := m.ImpliedMarketMultiple()
	if low <= high {
		t.Fatalf("multiple should fall as rates rise: %v vs %v", low, high)
	}
}

func TestExpectedWeeklyEquityReturnBand(t *testing.T) {
	cases := []Macro{
		{InterestRate: 0.0, Sentiment: 1},
		{InterestRate: 0.18, Sentiment: -1},
		{InterestRate: 0.05, Sentiment: 0},
	}
	for _, m := range cases {
		r := m.ExpectedWeeklyEquityReturn()
		if r < 0.0002 || r > 0.0035 {
			t.Fatalf("systemic return out of band for %+v: %v", m, r)
		}
	}
}
