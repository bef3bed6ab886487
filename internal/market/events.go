package market

import (
	"fmt"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventEarnings    EventKind = "earnings"
	EventGuidance    EventKind = "guidance"
	EventProduct     EventKind = "product"
	EventLegal       EventKind = "legal"
	EventMerger      EventKind = "merger"
	EventDividend    EventKind = "dividend"
	EventBuyback     EventKind = "buyback"
	EventSplit       EventKind = "split"
	EventRating      EventKind = "rating"
	EventRegulatory  EventKind = "regulatory"
	EventSupplyChain EventKind = "supply_chain"
	EventMacroShock  EventKind = "macro_shock"
	EventDistress    EventKind = "distress"
	EventBankruptcy  EventKind = "bankruptcy"
)

// Event is one entry in a company's corporate-action trace. Instantaneous
// fields were applied on the week it carries; sticky fields were installed as
// an ActiveEffect with the given duration.
type Event struct {
	ID       string    `json:"id"`
	Week     int       `json:"week"`
	Kind     EventKind `json:"kind"`
	Headline string    `json:"headline"`

	PriceShock float64 `json:"price_shock,omitempty"`
	CashDelta  float64 `json:"cash_delta,omitempty"`
	DebtDelta  float64 `json:"debt_delta,omitempty"`

	DriftDelta     float64 `json:"drift_delta,omitempty"`
	MultipleDelta  float64 `json:"multiple_delta,omitempty"`
	SentimentDelta float64 `json:"sentiment_delta,omitempty"`
	DurationWeeks  int     `json:"duration_weeks,omitempty"`
}

// ActiveEffect biases a company's drift, valuation multiple and sentiment
// until ExpiryWeek (inclusive). Effects are additive and pruned every tick.
type ActiveEffect struct {
	ExpiryWeek     int     `json:"expiry_week"`
	DriftDelta     float64 `json:"drift_delta"`
	MultipleDelta  float64 `json:"multiple_delta"`
	SentimentDelta float64 `json:"sentiment_delta"`
}

func newEvent(week int, kind EventKind, headline string) Event {
	return Event{ID: uuid.NewString(), Week: week, Kind: kind, Headline: headline}
}

func (c *Company) recordEvent(ev Event) {
	c.Events = append(c.Events, ev)
}

// installEffect records the event and, when it carries sticky fields, arms the
// matching active effect.
func (c *Company) installEffect(week int, ev Event) {
	if ev.DurationWeeks > 0 {
		c.Effects = append(c.Effects, ActiveEffect{
			ExpiryWeek:     week + ev.DurationWeeks,
			DriftDelta:     ev.DriftDelta,
			MultipleDelta:  ev.MultipleDelta,
			SentimentDelta: ev.SentimentDelta,
		})
	}
	c.recordEvent(ev)
}

// liveEffectSums aggregates the still-live effect deltas for a week.
func (c *Company) liveEffectSums(week int) (drift, multiple, sentiment float64) {
	for _, e := range c.Effects {
		if e.ExpiryWeek >= week {
			drift += e.DriftDelta
			multiple += e.MultipleDelta
			sentiment += e.SentimentDelta
		}
	}
	return drift, multiple, sentiment
}

func (c *Company) pruneEffects(week int) {
	kept := c.Effects[:0]
	for _, e := range c.Effects {
		if e.ExpiryWeek >= week {
			kept = append(kept, e)
		}
	}
	c.Effects = kept
}

func eventDuration(rng *Rand) int {
	return 12 + int(rng.Uniform()*13) // 12..24
}

// rollQuarterlyEvent draws at most one discrete corporate event per quarter
// from fixed probability bands.
func (c *Company) rollQuarterlyEvent(week int, rng *Rand) {
	u := rng.Uniform()
	switch {
	case u < 0.10: // guidance revision
		up := rng.Bernoulli(0.55)
		mag := rng.TruncNormal(0.03, 0.015, 0.01, 0.07)
		ev := newEvent(week, EventGuidance, fmt.Sprintf("%s revises guidance", c.Name))
		ev.DurationWeeks = eventDuration(rng)
		if up {
			ev.PriceShock = mag
			ev.DriftDelta = 0.0008
			ev.SentimentDelta = 0.002
		} else {
			ev.PriceShock = -mag
			ev.DriftDelta = -0.0008
			ev.SentimentDelta = -0.002
		}
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
	case u < 0.16: // product launch or flop
		hit := rng.Bernoulli(0.6)
		mag := rng.TruncNormal(0.04, 0.02, 0.01, 0.10)
		ev := newEvent(week, EventProduct, fmt.Sprintf("%s ships a new product", c.Name))
		ev.DurationWeeks = eventDuration(rng)
		if hit {
			ev.PriceShock = mag
			ev.DriftDelta = 0.001
			ev.MultipleDelta = 0.05
		} else {
			ev.Headline = fmt.Sprintf("%s product launch flops", c.Name)
			ev.PriceShock = -mag
			ev.DriftDelta = -0.001
			ev.MultipleDelta = -0.05
		}
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
	case u < 0.20: // legal trouble
		ev := newEvent(week, EventLegal, fmt.Sprintf("%s faces legal scrutiny", c.Name))
		ev.PriceShock = -rng.TruncNormal(0.05, 0.02, 0.02, 0.12)
		ev.MultipleDelta = -0.10
		ev.SentimentDelta = -0.003
		ev.DurationWeeks = eventDuration(rng)
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
	case u < 0.23: // merger chatter
		ev := newEvent(week, EventMerger, fmt.Sprintf("%s named in merger talks", c.Name))
		ev.PriceShock = rng.TruncNormal(0.06, 0.02, 0.02, 0.12)
		ev.MultipleDelta = 0.15
		ev.DurationWeeks = 12
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
	case u < 0.28: // analyst rating change
		up := rng.Bernoulli(0.5)
		ev := newEvent(week, EventRating, fmt.Sprintf("analysts re-rate %s", c.Ticker))
		mag := rng.TruncNormal(0.02, 0.01, 0.005, 0.05)
		ev.DurationWeeks = eventDuration(rng)
		if up {
			ev.PriceShock = mag
			ev.SentimentDelta = 0.002
		} else {
			ev.PriceShock = -mag
			ev.SentimentDelta = -0.002
		}
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
	}
}

// rollWeeklyNews occasionally lands a minor headline between quarters.
func (c *Company) rollWeeklyNews(week int, rng *Rand) {
	if !rng.Bernoulli(0.05) {
		return
	}
	if rng.Bernoulli(0.5) {
		ev := newEvent(week, EventSupplyChain, fmt.Sprintf("%s hits a supply-chain snag", c.Name))
		ev.PriceShock = -rng.TruncNormal(0.015, 0.008, 0.002, 0.04)
		ev.DriftDelta = -0.0003
		ev.DurationWeeks = 12
		c.applyPriceShock(ev.PriceShock)
		c.installEffect(week, ev)
		return
	}
	ev := newEvent(week, EventRegulatory, fmt.Sprintf("regulators eye %s", c.Name))
	ev.PriceShock = -rng.TruncNormal(0.01, 0.006, 0.001, 0.03)
	ev.SentimentDelta = -0.001
	ev.DurationWeeks = 12
	c.applyPriceShock(ev.PriceShock)
	c.installEffect(week, ev)
}
