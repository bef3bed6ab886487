package market

import (
	"fmt"
	"math"
	"strings"
)

// SectorNames is the fixed sector roster every universe starts with.
var SectorNames = []string{"Technology", "Healthcare", "Finance", "Energy", "Consumer", "Industrials"}

type Config struct {
	Seed        uint32 // 0 = clock-seeded
	Companies   int
	WarmupWeeks int
}

// Universe owns one macro environment, the sector indexes and the generated
// companies, plus the single Rand every stochastic step draws from. All state
// is mutated only by Tick, strictly in week order, on one goroutine.
type Universe struct {
	Macro     *Macro
	Sectors   []*Sector
	Companies []*Company

	rng          *Rand
	byTicker     map[string]*Company
	sectorByName map[string]*Sector
}

// Snapshot is the read surface handed to external consumers (API clients and
// the decision oracle).
type Snapshot struct {
	Week       int         `json:"week"`
	Ticker     string      `json:"ticker"`
	Name       string      `json:"name"`
	Sector     string      `json:"sector"`
	Stage      Stage       `json:"stage"`
	Risk       RiskProfile `json:"risk"`
	Price      float64     `json:"price"`
	PETTM      *float64    `json:"pe_ttm"` // null when trailing earnings <= 0
	PSTTM      float64     `json:"ps_ttm"`
	RevenueTTM float64     `json:"revenue_ttm"`
	Margin     float64     `json:"margin"`
	Leverage   float64     `json:"leverage"`
	Sentiment  float64     `json:"sentiment"`
	Bankrupt   bool        `json:"bankrupt"`
}

func New(cfg Config) *Universe {
	var rng *Rand
	if cfg.Seed != 0 {
		rng = NewRand(cfg.Seed)
	} else {
		rng = NewRandAuto()
	}
	if cfg.Companies <= 0 {
		cfg.Companies = 20
	}

	u := &Universe{
		Macro:        NewMacro(rng),
		rng:          rng,
		byTicker:     make(map[string]*Company),
		sectorByName: make(map[string]*Sector),
	}
	for _, name := range SectorNames {
		s := NewSector(name, rng)
		u.Sectors = append(u.Sectors, s)
		u.sectorByName[name] = s
	}
	for i := 0; i < cfg.Companies; i++ {
		sector := u.Sectors[i%len(u.Sectors)]
		c := generateCompany(sector.Name, u.byTicker, rng)
		u.Companies = append(u.Companies, c)
		u.byTicker[c.Ticker] = c
	}
	u.TickN(cfg.WarmupWeeks)
	return u
}

func (u *Universe) Week() int {
	return u.Macro.Week
}

// Tick advances the whole universe one week: macro first, then sectors, then
// companies, all in fixed order.
func (u *Universe) Tick() {
	u.Macro.Update(u.rng)
	for _, s := range u.Sectors {
		s.Update(u.Macro, u.rng)
	}
	for _, c := range u.Companies {
		c.SimulateWeek(u.Macro.Week, u.Macro, u.sectorByName[c.Sector], u.rng)
	}
}

func (u *Universe) TickN(n int) {
	for i := 0; i < n; i++ {
		u.Tick()
	}
}

func (u *Universe) Company(ticker string) (*Company, bool) {
	c, ok := u.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return c, ok
}

func (u *Universe) Sector(name string) (*Sector, bool) {
	s, ok := u.sectorByName[name]
	return s, ok
}

func (u *Universe) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(u.Companies))
	for _, c := range u.Companies {
		out = append(out, u.snapshotOf(c))
	}
	return out
}

func (u *Universe) SnapshotOf(ticker string) (Snapshot, bool) {
	c, ok := u.Company(ticker)
	if !ok {
		return Snapshot{}, false
	}
	return u.snapshotOf(c), true
}

func (u *Universe) snapshotOf(c *Company) Snapshot {
	snap := Snapshot{
		Week:       u.Macro.Week,
		Ticker:     c.Ticker,
		Name:       c.Name,
		Sector:     c.Sector,
		Stage:      c.Stage,
		Risk:       c.Risk,
		Price:      c.Price,
		PSTTM:      c.PSTTM(),
		RevenueTTM: c.TTMRevenue(),
		Margin:     c.TTMMargin(),
		Leverage:   c.DebtEquity(),
		Sentiment:  c.Sentiment,
		Bankrupt:   c.Bankrupt,
	}
	if pe, ok := c.PETTM(); ok {
		snap.PETTM = &pe
	}
	return snap
}

var namePrefixes = []string{
	"Nova", "Vertex", "Quant", "Helio", "Aero", "Bluecrest", "Ironline", "Cinder",
	"Lumen", "Arcadia", "Deltarow", "Pinnacle", "Orchid", "Summit", "Atlasgate",
	"Ember", "Driftwood", "Halcyon", "Mirabel", "Zephyr",
}

var sectorCores = map[string][]string{
	"Technology":  {"Compute", "Systems", "Logic", "Dataworks", "Robotics"},
	"Healthcare":  {"Bio", "Genomics", "Medical", "Therapeutics", "Health"},
	"Finance":     {"Capital", "Holdings", "Trust", "Financial", "Assets"},
	"Energy":      {"Energy", "Power", "Grid", "Solar", "Fuels"},
	"Consumer":    {"Retail", "Brands", "Foods", "Goods", "Outfitters"},
	"Industrials": {"Industries", "Works", "Forge", "Freight", "Materials"},
}

// generateCompany samples an internally consistent starting company for a
// sector: stage and risk archetype first, then financials proportional to
// them, then a price seeded near fair value.
func generateCompany(sector string, used map[string]*Company, rng *Rand) *Company {
	stage := pickStage(rng)
	risk := pickRisk(stage, rng)

	name := Pick(rng, namePrefixes) + " " + Pick(rng, sectorCores[sector])
	ticker := tickerFor(name, used, rng)

	c := &Company{
		Name:        name,
		Ticker:      ticker,
		Sector:      sector,
		Description: fmt.Sprintf("%s is a %s-stage, %s-risk %s company.", name, stage, risk, strings.ToLower(sector)),
		Stage:       stage,
		Risk:        risk,

		RAndDRate:        rng.TruncNormal(0.05, 0.02, 0.01, 0.12),
		CapexRate:        rng.TruncNormal(0.06, 0.02, 0.02, 0.10),
		DepreciationRate: rng.TruncNormal(0.006, 0.002, 0.002, 0.012),
		TaxRate:          0.21,

		PendingSplitFactor: 1,
	}

	switch stage {
	case StageStartup:
		c.Revenue = rng.TruncNormal(6_000, 2_500, 2_000, 12_000)
		c.Expenses = c.Revenue * rng.TruncNormal(1.12, 0.08, 1.0, 1.3)
		c.RAndDRate = rng.TruncNormal(0.10, 0.03, 0.05, 0.18)
		c.BaseVol = rng.TruncNormal(0.06, 0.01, 0.045, 0.085)
		c.PayoutRatio = 0
	case StageGrowth:
		c.Revenue = rng.TruncNormal(30_000, 12_000, 10_000, 60_000)
		c.Expenses = c.Revenue * rng.TruncNormal(0.92, 0.05, 0.82, 1.02)
		c.BaseVol = rng.TruncNormal(0.045, 0.008, 0.032, 0.06)
		c.PayoutRatio = 0
		if rng.Bernoulli(0.3) {
			c.PayoutRatio = rng.TruncNormal(0.08, 0.03, 0.02, 0.15)
		}
	case StageMature:
		c.Revenue = rng.TruncNormal(140_000, 60_000, 50_000, 300_000)
		c.Expenses = c.Revenue * rng.TruncNormal(0.80, 0.04, 0.72, 0.88)
		c.BaseVol = rng.TruncNormal(0.028, 0.005, 0.018, 0.04)
		c.PayoutRatio = rng.TruncNormal(0.35, 0.08, 0.2, 0.5)
		if rng.Bernoulli(0.5) {
			c.TargetYield = rng.TruncNormal(0.02, 0.006, 0.01, 0.035)
		}
		c.BuybackRate = rng.TruncNormal(0.3, 0.1, 0.1, 0.5)
	default: // decline
		c.Revenue = rng.TruncNormal(80_000, 35_000, 30_000, 150_000)
		c.Expenses = c.Revenue * rng.TruncNormal(0.88, 0.04, 0.8, 0.96)
		c.BaseVol = rng.TruncNormal(0.035, 0.007, 0.024, 0.05)
		c.PayoutRatio = rng.TruncNormal(0.45, 0.08, 0.3, 0.6)
		c.BuybackRate = rng.TruncNormal(0.2, 0.08, 0.05, 0.4)
	}

	c.Assets = c.Revenue * rng.TruncNormal(45, 10, 28, 65)
	c.Cash = c.Revenue * rng.TruncNormal(12, 4, 5, 24)
	c.Debt = c.Assets * rng.TruncNormal(0.25, 0.1, 0.05, 0.5)
	c.SharesOutstanding = math.Max(MinShares, rng.TruncNormal(12_000_000, 8_000_000, 2_000_000, 40_000_000))

	c.Price = startingPrice(c, rng)
	c.BaseDrift = 0.0004
	c.Sentiment = rng.TruncNormal(0, 0.15, -0.4, 0.4)
	return c
}

func pickStage(rng *Rand) Stage {
	u := rng.Uniform()
	switch {
	case u < 0.20:
		return StageStartup
	case u < 0.50:
		return StageGrowth
	case u < 0.85:
		return StageMature
	default:
		return StageDecline
	}
}

func pickRisk(stage Stage, rng *Rand) RiskProfile {
	u := rng.Uniform()
	switch stage {
	case StageStartup:
		if u < 0.7 {
			return RiskHigh
		}
		return RiskMedium
	case StageMature:
		switch {
		case u < 0.45:
			return RiskLow
		case u < 0.9:
			return RiskMedium
		default:
			return RiskHigh
		}
	default:
		switch {
		case u < 0.25:
			return RiskLow
		case u < 0.75:
			return RiskMedium
		default:
			return RiskHigh
		}
	}
}

// startingPrice seeds the listing near the same blended fair value the weekly
// reversion pulls toward, with listing-day noise.
func startingPrice(c *Company, rng *Rand) float64 {
	netWeekly := c.Revenue - c.Expenses - c.RAndDRate*c.Revenue - c.DepreciationRate*c.Assets
	epsA := netWeekly * WeeksPerYear / c.SharesOutstanding
	spsA := c.Revenue * WeeksPerYear / c.SharesOutstanding
	fair := spsA * 3 * stagePSFactor(c.Stage)
	if epsA > 0 {
		fair = 0.7*epsA*18*stagePEFactor(c.Stage) + 0.3*spsA*3*stagePSFactor(c.Stage)
	}
	return clamp(fair*rng.TruncNormal(1, 0.1, 0.85, 1.15), 3, 280)
}

const tickerLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func tickerFor(name string, used map[string]*Company, rng *Rand) string {
	letters := make([]byte, 0, 8)
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, byte(r))
		}
	}
	base := string(letters[:min(4, len(letters))])
	ticker := base
	for {
		if _, taken := used[ticker]; !taken {
			return ticker
		}
		if len(ticker) >= 6 {
			ticker = base[:3]
		}
		ticker += string(tickerLetters[int(rng.Uniform()*26)%26])
	}
}
