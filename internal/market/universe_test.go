package market

import (
	"reflect"
	"strings"
	"testing"
)

func TestUniverseDeterministicTrajectories(t *testing.T) {
	a := New(Config{Seed: 4242, Companies: 12, WarmupWeeks: 10})
	b := New(Config{Seed: 4242, Companies: 12, WarmupWeeks: 10})
	for i := 0; i < 150; i++ {
		a.Tick()
		b.Tick()
	}
	if !reflect.DeepEqual(a.Snapshots(), b.Snapshots()) {
		t.Fatal("same seed and tick count must produce identical snapshots")
	}
	for i := range a.Companies {
		ca, cb := a.Companies[i], b.Companies[i]
		if ca.Ticker != cb.Ticker || ca.Price != cb.Price || ca.Cash != cb.Cash {
			t.Fatalf("company %d diverged: %s/%s", i, ca.Ticker, cb.Ticker)
		}
		if !reflect.DeepEqual(ca.History, cb.History) {
			t.Fatalf("history diverged for %s", ca.Ticker)
		}
	}
}

func TestUniverseSeedsDiffer(t *testing.T) {
	a := New(Config{Seed: 1, Companies: 8, WarmupWeeks: 20})
	b := New(Config{Seed: 2, Companies: 8, WarmupWeeks: 20})
	same := true
	for i := range a.Companies {
		if a.Companies[i].Price != b.Companies[i].Price {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical universes")
	}
}

func TestUniverseInvariants(t *testing.T) {
	u := New(Config{Seed: 99, Companies: 24})
	for i := 0; i < 500; i++ {
		u.Tick()
		for _, c := range u.Companies {
			if c.Price < PriceFloor {
				t.Fatalf("%s price below floor at week %d: %v", c.Ticker, u.Week(), c.Price)
			}
			if c.SharesOutstanding < MinShares {
				t.Fatalf("%s shares below floor at week %d: %v", c.Ticker, u.Week(), c.SharesOutstanding)
			}
		}
	}
	if u.Week() != 500 {
		t.Fatalf("week counter off: %d", u.Week())
	}
}

func TestHistoryGapless(t *testing.T) {
	u := New(Config{Seed: 7, Companies: 10})
	u.TickN(300)
	for _, c := range u.Companies {
		if len(c.History) != 300 {
			t.Fatalf("%s history has %d points, want 300", c.Ticker, len(c.History))
		}
		for i, h := range c.History {
			if h.Week != i+1 {
				t.Fatalf("%s history gap at index %d: week %d", c.Ticker, i, h.Week)
			}
		}
	}
}

func TestWarmupAdvancesClock(t *testing.T) {
	u := New(Config{Seed: 13, Companies: 6, WarmupWeeks: 48})
	if u.Week() != 48 {
		t.Fatalf("warmup should leave the clock at week 48, got %d", u.Week())
	}
	for _, c := range u.Companies {
		if len(c.History) != 48 {
			t.Fatalf("%s should carry warmup history, got %d points", c.Ticker, len(c.History))
		}
	}
}

func TestCompanyLookup(t *testing.T) {
	u := New(Config{Seed: 55, Companies: 9})
	want := u.Companies[0]
	got, ok := u.Company("  " + want.Ticker + "  ")
	if !ok || got != want {
		t.Fatal("lookup should trim whitespace")
	}
	got, ok = u.Company(strings.ToLower(want.Ticker))
	if !ok || got != want {
		t.Fatal("lookup should be case-insensitive")
	}
	if _, ok := u.Company("NOPE99"); ok {
		t.Fatal("lookup should miss unknown tickers")
	}
}

func TestTickersUnique(t *testing.T) {
	u := New(Config{Seed: 88, Companies: 60})
	seen := map[string]bool{}
	for _, c := range u.Companies {
		if seen[c.Ticker] {
			t.Fatalf("duplicate ticker %s", c.Ticker)
		}
		seen[c.Ticker] = true
		if c.Sector == "" || u.sectorByName[c.Sector] == nil {
			t.Fatalf("%s assigned to unknown sector %q", c.Ticker, c.Sector)
		}
	}
}

func TestSectorsCovered(t *testing.T) {
	u := New(Config{Seed: 6, Companies: len(SectorNames) * 2})
	count := map[string]int{}
	for _, c := range u.Companies {
		count[c.Sector]++
	}
	for _, name := range SectorNames {
		if count[name] != 2 {
			t.Fatalf("sector %s has %d companies, want 2", name, count[name])
		}
	}
}
