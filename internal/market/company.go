package market

import (
	"fmt"
	"math"
)

const (
	// WeeksPerYear is the tick-to-calendar ratio: 48 ticks make one simulated
	// year, 12 make a quarter.
	WeeksPerYear  = 48
	WeeksPerQtr   = 12
	PriceFloor    = 0.5
	MinShares     = 1_000_000
	MaxWeeklyMove = 0.10
)

type RiskProfile string

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

type Stage string

const (
	StageStartup Stage = "startup"
	StageGrowth  Stage = "growth"
	StageMature  Stage = "mature"
	StageDecline Stage = "decline"
)

// Company is the principal simulated entity: weekly fundamentals, a balance
// sheet, market state and a private event/effect ledger. All money fields are
// weekly flows or point-in-time balances in abstract currency units.
type Company struct {
	Name        string      `json:"name"`
	Ticker      string      `json:"ticker"`
	Sector      string      `json:"sector"` // lookup key, never a pointer
	Description string      `json:"description"`
	Risk        RiskProfile `json:"risk"`
	Stage       Stage       `json:"stage"`

	Revenue  float64 `json:"revenue"`  // weekly
	Expenses float64 `json:"expenses"` // weekly

	RAndDRate        float64 `json:"rand_d_rate"`
	CapexRate        float64 `json:"capex_rate"`
	DepreciationRate float64 `json:"depreciation_rate"`
	TaxRate          float64 `json:"tax_rate"`

	Cash              float64 `json:"cash"`
	Debt              float64 `json:"debt"`
	Assets            float64 `json:"assets"` // operating assets
	SharesOutstanding float64 `json:"shares_outstanding"`

	Price     float64 `json:"price"`
	BaseDrift float64 `json:"base_drift"`
	BaseVol   float64 `json:"base_vol"`
	Sentiment float64 `json:"sentiment"`

	PayoutRatio float64 `json:"payout_ratio"`
	TargetYield float64 `json:"target_yield,omitempty"` // 0 = no yield target
	BuybackRate float64 `json:"buyback_rate"`

	QuarterNetIncome   float64 `json:"quarter_net_income"`
	NegQuarterStreak   int     `json:"neg_quarter_streak"`
	LowPriceStreak     int     `json:"low_price_streak"`
	Bankrupt           bool    `json:"bankrupt"`
	PendingSplitFactor float64 `json:"pending_split_factor"`

	Effects []ActiveEffect `json:"effects"`
	Events  []Event        `json:"events"`
	History []HistoryPoint `json:"history"`

	lastReturn float64
}

// HistoryPoint is the immutable end-of-week snapshot appended once per tick.
type HistoryPoint struct {
	Week      int     `json:"week"`
	Price     float64 `json:"price"`
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	EPS       float64 `json:"eps"` // annualized, per share
	NetIncome float64 `json:"net_income"`
	Cash      float64 `json:"cash"`
	Debt      float64 `json:"debt"`
	Assets    float64 `json:"assets"`
	Equity    float64 `json:"equity"`
	Shares    float64 `json:"shares"`
	PETTM     float64 `json:"pe_ttm"` // <= 0 means not meaningful
	PSTTM     float64 `json:"ps_ttm"`
	Sentiment float64 `json:"sentiment"`
}

func stageGrowthAdd(s Stage) float64 {
	switch s {
	case StageStartup:
		return 0.004
	case StageGrowth:
		return 0.002
	case StageMature:
		return 0.0005
	default:
		return -0.0015
	}
}

func stagePEFactor(s Stage) float64 {
	switch s {
	case StageStartup:
		return 1.6
	case StageGrowth:
		return 1.3
	case StageMature:
		return 1.0
	default:
		return 0.75
	}
}

func stagePSFactor(s Stage) float64 {
	switch s {
	case StageStartup:
		return 1.8
	case StageGrowth:
		return 1.4
	case StageMature:
		return 1.0
	default:
		return 0.6
	}
}

func riskSpread(r RiskProfile) float64 {
	switch r {
	case RiskLow:
		return 0.01
	case RiskHigh:
		return 0.05
	default:
		return 0.025
	}
}

func riskPEFactor(r RiskProfile) float64 {
	switch r {
	case RiskLow:
		return 0.95
	case RiskHigh:
		return 1.1
	default:
		return 1.0
	}
}

func riskBeta(r RiskProfile) float64 {
	switch r {
	case RiskLow:
		return 0.7
	case RiskHigh:
		return 1.4
	default:
		return 1.0
	}
}

func (c *Company) applyPriceShock(frac float64) {
	c.Price = math.Max(PriceFloor, c.Price*(1+frac))
}

// SimulateWeek advances the company by one tick. The step order below is part
// of the numeric contract: reordering changes every downstream draw.
func (c *Company) SimulateWeek(week int, m *Macro, s *Sector, rng *Rand) {
	c.PendingSplitFactor = 1

	if c.Bankrupt {
		// Terminal state: the ledger keeps its cadence, nothing evolves.
		c.appendFrozenHistory(week)
		return
	}

	sharesBefore := c.SharesOutstanding

	// 1. Sentiment blend.
	c.Sentiment = clamp(
		0.9*c.Sentiment+0.05*m.Sentiment+0.05*s.Sentiment+
			clamp(c.lastReturn*2, -0.05, 0.05)+
			rng.TruncNormal(0, 0.04, -0.1, 0.1),
		-1, 1)

	// 2. Revenue / expense evolution.
	growthMean := s.BaselineGrowth + stageGrowthAdd(c.Stage) + 0.001*m.Sentiment + 0.0015*c.Sentiment
	c.Revenue = math.Max(0, c.Revenue*(1+growthMean+rng.Normal(0, 0.003)))
	expenseMean := 0.7*growthMean + 0.8*(m.Inflation/WeeksPerYear)
	c.Expenses = math.Max(0, c.Expenses*(1+expenseMean+rng.Normal(0, 0.003)))

	// 3. Income statement.
	rAndD := c.RAndDRate * c.Revenue
	depreciation := c.DepreciationRate * c.Assets
	borrowRate := clamp(m.InterestRate+riskSpread(c.Risk), 0, 0.35)
	interest := c.Debt * borrowRate / WeeksPerYear
	operatingIncome := c.Revenue - c.Expenses - rAndD - depreciation
	pretax := operatingIncome - interest
	tax := math.Max(0, pretax) * c.TaxRate
	netIncome := pretax - tax
	c.QuarterNetIncome += netIncome

	// 4. Cash flow and balance sheet.
	capex := c.CapexRate * c.Revenue
	c.Assets = math.Max(0, c.Assets+capex-depreciation)
	c.Cash += netIncome + depreciation - capex

	// 5. Active-effect decay.
	driftDelta, multipleDelta, sentimentDelta := c.liveEffectSums(week)
	c.Sentiment = clamp(c.Sentiment+clamp(sentimentDelta, -0.2, 0.2), -1, 1)
	c.pruneEffects(week + 1)

	// 6. Valuation targets and fundamental value per share.
	targetPE := clamp(
		m.ImpliedMarketMultiple()*s.PEAdjust*stagePEFactor(c.Stage)*riskPEFactor(c.Risk)*
			(1+clamp(c.Sentiment, -1, 1)*0.25)*(1+multipleDelta),
		12, 45)
	rateFactor := clamp(1-(m.InterestRate-0.04)*4, 0.6, 1.2)
	targetPS := clamp(3.0*stagePSFactor(c.Stage)*rateFactor*(1+multipleDelta), 1.0, 14)

	epsTTM := c.trailingEPS(netIncome)
	spsTTM := c.trailingSPS()
	fundamental := spsTTM * targetPS
	if epsTTM > 0 {
		fundamental = 0.7*epsTTM*targetPE + 0.3*spsTTM*targetPS
	}

	// 7. Price dynamics.
	margin := 0.0
	if c.Revenue > 0 {
		margin = netIncome / c.Revenue
	}
	c.BaseDrift = 0.0004 + clamp(margin, -0.3, 0.4)*0.002 + driftDelta

	discount := 0.0
	if c.Price > 0 {
		discount = (fundamental - c.Price) / c.Price
	}
	qualityTilt := clamp(margin, -0.25, 0.35) * 0.004
	valueTilt := clamp(discount, -0.5, 0.5) * 0.003
	trendTilt := clamp(c.marginTrendYoY(), -0.1, 0.1) * 0.01

	ret := c.BaseDrift +
		m.ExpectedWeeklyEquityReturn() +
		riskBeta(c.Risk)*rng.Normal(0, m.Volatility) +
		0.8*rng.Normal(0, s.Volatility) +
		rng.Normal(0, c.BaseVol) +
		clamp(discount, -0.25, 0.25)*0.015 +
		0.05*c.lastReturn +
		qualityTilt + valueTilt + trendTilt
	ret = clamp(ret, -MaxWeeklyMove, MaxWeeklyMove)
	c.Price = math.Max(PriceFloor, c.Price*(1+ret))
	c.lastReturn = ret

	// 8. Price-band normalization, market cap preserved. The sub-3 lift needs
	// share room above the floor; a floored stock is left where it trades, so
	// a collapsing price can ride below 1 and feed the reverse-split streak.
	if c.Price < 3 {
		ratio := math.Ceil(3 / c.Price)
		if c.SharesOutstanding/ratio >= MinShares {
			c.Price *= ratio
			c.SharesOutstanding /= ratio
		}
	} else if c.Price > 300 {
		ratio := math.Ceil(c.Price / 300)
		c.Price /= ratio
		c.SharesOutstanding *= ratio
	}
	if c.Price < 1 {
		c.LowPriceStreak++
	} else {
		c.LowPriceStreak = 0
	}

	// 9. Quarterly bell.
	if week%WeeksPerQtr == 0 {
		c.runQuarter(week, rng)
	}

	// 10. Weekly news, plus a trace entry when this week carried a macro shock.
	if m.LastShock != 0 {
		headline := fmt.Sprintf("macro shock rattles %s", c.Name)
		if m.LastShock > 0 {
			headline = fmt.Sprintf("macro surprise lifts %s", c.Name)
		}
		c.recordEvent(newEvent(week, EventMacroShock, headline))
	}
	c.rollWeeklyNews(week, rng)

	// 11. Distress: plug a cash hole with emergency debt.
	if c.Cash < 0 {
		shortfall := -c.Cash
		raise := math.Min(shortfall*1.1, 0.2*c.Assets)
		c.Debt += raise
		c.Cash += raise
		ev := newEvent(week, EventDistress, fmt.Sprintf("%s raises emergency debt", c.Name))
		ev.DebtDelta = raise
		ev.CashDelta = raise
		ev.PriceShock = -0.03
		c.applyPriceShock(ev.PriceShock)
		c.recordEvent(ev)
	}

	// 12. Bankruptcy: severe leverage AND a long losing streak AND a cash hole.
	equity := c.Assets + c.Cash - c.Debt
	leverage := c.Debt / math.Max(equity, 1)
	if !c.Bankrupt && leverage > 5 && c.NegQuarterStreak >= 8 && c.Cash < -0.5*c.Expenses {
		c.Bankrupt = true
		c.applyPriceShock(-0.9)
		c.Price = math.Max(PriceFloor, c.Price*0.2)
		ev := newEvent(week, EventBankruptcy, fmt.Sprintf("%s files for bankruptcy", c.Name))
		ev.PriceShock = -0.98
		c.recordEvent(ev)
	}

	// 13. Post-update floor.
	c.Price = math.Max(PriceFloor, c.Price)

	// 14. Split-factor signal for external ledgers.
	ratio := c.SharesOutstanding / sharesBefore
	if ratio > 1.5 || ratio < 0.67 {
		c.PendingSplitFactor = ratio
	}

	// 15. Snapshot.
	c.appendHistory(week, netIncome)
}

// runQuarter applies the every-12th-week corporate actions.
func (c *Company) runQuarter(week int, rng *Rand) {
	// Earnings surprise.
	surprise := rng.TruncNormal(0, 0.05, -0.12, 0.12)
	ev := newEvent(week, EventEarnings, fmt.Sprintf("%s reports quarterly earnings", c.Name))
	ev.PriceShock = surprise
	c.applyPriceShock(surprise)
	c.recordEvent(ev)

	// Dividend.
	if c.PayoutRatio > 0 && c.QuarterNetIncome > 0 {
		dividend := c.QuarterNetIncome * c.PayoutRatio
		if c.TargetYield > 0 {
			yieldCap := c.Price * c.SharesOutstanding * c.TargetYield / 4
			dividend = math.Min(dividend, yieldCap)
		}
		dividend = math.Min(dividend, math.Max(0, c.Cash))
		if dividend > 0 {
			perShare := dividend / c.SharesOutstanding
			c.Cash -= dividend
			c.Price = math.Max(PriceFloor, c.Price-perShare)
			div := newEvent(week, EventDividend, fmt.Sprintf("%s pays a dividend", c.Name))
			div.CashDelta = -dividend
			c.recordEvent(div)
		}
	}

	// Buyback when trading well below fundamental with cash to spare.
	liquidityBuffer := 8 * c.Expenses
	fundamental := c.fundamentalGuess()
	if c.BuybackRate > 0 && fundamental > 0 && c.Price < 0.8*fundamental && c.Cash > liquidityBuffer {
		excess := c.Cash - liquidityBuffer
		spend := math.Min(excess*c.BuybackRate, 0.05*c.SharesOutstanding*c.Price)
		if spend > 0 {
			bought := spend / c.Price
			c.SharesOutstanding = math.Max(MinShares, c.SharesOutstanding-bought)
			c.Cash -= spend
			c.Price = math.Max(PriceFloor, c.Price*1.01)
			bb := newEvent(week, EventBuyback, fmt.Sprintf("%s buys back stock", c.Name))
			bb.CashDelta = -spend
			c.recordEvent(bb)
		}
	}

	// Forward split at lofty prices.
	if c.Price > 200 {
		c.SharesOutstanding *= 4
		c.Price /= 4
		sp := newEvent(week, EventSplit, fmt.Sprintf("%s splits 4-for-1", c.Name))
		c.recordEvent(sp)
	}

	// Reverse split after a sustained sub-1 stretch.
	if c.LowPriceStreak >= 16 {
		c.SharesOutstanding = math.Max(MinShares, c.SharesOutstanding/10)
		c.Price *= 10
		c.LowPriceStreak = 0
		sp := newEvent(week, EventSplit, fmt.Sprintf("%s reverse splits 1-for-10", c.Name))
		c.recordEvent(sp)
	}

	// Quarter bookkeeping.
	if c.QuarterNetIncome < 0 {
		c.NegQuarterStreak++
	} else if c.NegQuarterStreak > 0 {
		c.NegQuarterStreak--
	}
	c.QuarterNetIncome = 0

	c.rollQuarterlyEvent(week, rng)
}

// ConsumeSplitFactor hands the one-shot split signal to an external ledger and
// resets it.
func (c *Company) ConsumeSplitFactor() float64 {
	f := c.PendingSplitFactor
	c.PendingSplitFactor = 1
	if f == 0 {
		return 1
	}
	return f
}

// appendFrozenHistory repeats the last snapshot with only the week advanced.
func (c *Company) appendFrozenHistory(week int) {
	if len(c.History) == 0 {
		c.appendHistory(week, 0)
		return
	}
	last := c.History[len(c.History)-1]
	last.Week = week
	c.History = append(c.History, last)
}

func (c *Company) appendHistory(week int, netIncome float64) {
	equity := c.Assets + c.Cash - c.Debt
	eps := 0.0
	if c.SharesOutstanding > 0 {
		eps = netIncome * WeeksPerYear / c.SharesOutstanding
	}
	pe, _ := c.PETTM()
	ps := c.PSTTM()
	c.History = append(c.History, HistoryPoint{
		Week:      week,
		Price:     c.Price,
		Revenue:   c.Revenue,
		Expenses:  c.Expenses,
		EPS:       eps,
		NetIncome: netIncome,
		Cash:      c.Cash,
		Debt:      c.Debt,
		Assets:    c.Assets,
		Equity:    equity,
		Shares:    c.SharesOutstanding,
		PETTM:     pe,
		PSTTM:     ps,
		Sentiment: c.Sentiment,
	})
}
