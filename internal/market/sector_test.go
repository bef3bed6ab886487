package market

import "testing"

func TestSectorStaysClamped(t *testing.T) {
	rng := NewRand(7)
	m := NewMacro(rng)
	s := NewSector("Technology", rng)
	for i := 0; i < 3000; i++ {
		m.Update(rng)
		s.Update(m, rng)
		if s.BaselineGrowth < sectorGrowthFloor || s.BaselineGrowth > sectorGrowthCap {
			t.Fatalf("baseline growth out of band: %v", s.BaselineGrowth)
		}
		if s.Sentiment < -1 || s.Sentiment > 1 {
			t.Fatalf("sentiment out of band: %v", s.Sentiment)
		}
		if s.Volatility < sectorVolFloor || s.Volatility > sectorVolCap {
			t.Fatalf("volatility out of band: %v", s.Volatility)
		}
		if s.PEAdjust < 0.7 || s.PEAdjust > 1.3 {
			t.Fatalf("pe adjustment out of band: %v", s.PEAdjust)
		}
	}
}

func TestSectorTracksMacroSentiment(t *testing.T) {
	rng := NewRand(11)
	s := &Sector{Name: "Finance", Sentiment: 0, BaselineGrowth: 0, Volatility: 0.02, PEAdjust: 1}
	m := &Macro{Sentiment: 1, Inflation: 0.02}
	sum := 0.0
	for i := 0; i < 200; i++ {
		s.Update(m, rng)
		sum += s.Sentiment
	}
	if sum/200 <= 0 {
		t.Fatalf("sector sentiment should drift toward positive macro sentiment, avg %v", sum/200)
	}
}
