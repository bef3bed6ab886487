package market

import "math"

// Derived metrics are pure reads over current and historical state. Ratios
// with a non-positive denominator report "not applicable" instead of erroring:
// P/E accessors return ok=false, everything else falls back to zero.

// ttmWindow returns the trailing history window, at most WeeksPerYear points.
func (c *Company) ttmWindow() []HistoryPoint {
	n := len(c.History)
	if n == 0 {
		return nil
	}
	if n > WeeksPerYear {
		return c.History[n-WeeksPerYear:]
	}
	return c.History
}

// annualize scales a partial-year sum up to a full 48-week year.
func annualize(sum float64, weeks int) float64 {
	if weeks <= 0 {
		return 0
	}
	if weeks >= WeeksPerYear {
		return sum
	}
	return sum * WeeksPerYear / float64(weeks)
}

// TTMRevenue is revenue summed over the trailing year, annualized while the
// company is younger than 48 weeks.
func (c *Company) TTMRevenue() float64 {
	w := c.ttmWindow()
	if len(w) == 0 {
		return c.Revenue * WeeksPerYear
	}
	sum := 0.0
	for _, p := range w {
		sum += p.Revenue
	}
	return annualize(sum, len(w))
}

// TTMNetIncome is net income summed over the trailing year, annualized while
// the company is younger than 48 weeks.
func (c *Company) TTMNetIncome() float64 {
	w := c.ttmWindow()
	if len(w) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range w {
		sum += p.NetIncome
	}
	return annualize(sum, len(w))
}

// TTMMargin is trailing net margin; zero when trailing revenue is zero.
func (c *Company) TTMMargin() float64 {
	rev := c.TTMRevenue()
	if rev <= 0 {
		return 0
	}
	return c.TTMNetIncome() / rev
}

// Margin is the most recent week's net margin.
func (c *Company) Margin() float64 {
	if len(c.History) == 0 || c.Revenue <= 0 {
		return 0
	}
	last := c.History[len(c.History)-1]
	if last.Revenue <= 0 {
		return 0
	}
	return last.NetIncome / last.Revenue
}

// EPS is the latest week's net income annualized per share.
func (c *Company) EPS() float64 {
	if len(c.History) == 0 {
		return 0
	}
	return c.History[len(c.History)-1].EPS
}

// SPS is annualized revenue per share.
func (c *Company) SPS() float64 {
	if c.SharesOutstanding <= 0 {
		return 0
	}
	return c.Revenue * WeeksPerYear / c.SharesOutstanding
}

// PE is price over the latest annualized EPS; ok is false when earnings are
// non-positive.
func (c *Company) PE() (float64, bool) {
	eps := c.EPS()
	if eps <= 0 {
		return 0, false
	}
	return c.Price / eps, true
}

// PETTM is price over trailing EPS; ok is false when trailing earnings are
// non-positive.
func (c *Company) PETTM() (float64, bool) {
	if c.SharesOutstanding <= 0 {
		return 0, false
	}
	eps := c.TTMNetIncome() / c.SharesOutstanding
	if eps <= 0 {
		return 0, false
	}
	return c.Price / eps, true
}

// PS is price over annualized sales per share.
func (c *Company) PS() float64 {
	sps := c.SPS()
	if sps <= 0 {
		return 0
	}
	return c.Price / sps
}

// PSTTM is price over trailing sales per share.
func (c *Company) PSTTM() float64 {
	if c.SharesOutstanding <= 0 {
		return 0
	}
	sps := c.TTMRevenue() / c.SharesOutstanding
	if sps <= 0 {
		return 0
	}
	return c.Price / sps
}

// DebtEquity floors equity away from zero so leverage stays finite.
func (c *Company) DebtEquity() float64 {
	equity := c.Assets + c.Cash - c.Debt
	return c.Debt / math.Max(equity, 1)
}

// trailingEPS blends the trailing window with the week in flight, annualized
// per share. Used inside SimulateWeek before the snapshot is appended.
func (c *Company) trailingEPS(currentNet float64) float64 {
	if c.SharesOutstanding <= 0 {
		return 0
	}
	w := c.ttmWindow()
	sum := currentNet
	weeks := 1
	for i := len(w) - 1; i >= 0 && weeks < WeeksPerYear; i-- {
		sum += w[i].NetIncome
		weeks++
	}
	return annualize(sum, weeks) / c.SharesOutstanding
}

// trailingSPS blends the trailing window with the current week's revenue.
func (c *Company) trailingSPS() float64 {
	if c.SharesOutstanding <= 0 {
		return 0
	}
	w := c.ttmWindow()
	sum := c.Revenue
	weeks := 1
	for i := len(w) - 1; i >= 0 && weeks < WeeksPerYear; i-- {
		sum += w[i].Revenue
		weeks++
	}
	return annualize(sum, weeks) / c.SharesOutstanding
}

// marginTrendYoY compares trailing margin against the year before it; zero
// until two full years of history exist.
func (c *Company) marginTrendYoY() float64 {
	n := len(c.History)
	if n < 2*WeeksPerYear {
		return 0
	}
	recent := c.History[n-WeeksPerYear:]
	prior := c.History[n-2*WeeksPerYear : n-WeeksPerYear]
	return windowMargin(recent) - windowMargin(prior)
}

func windowMargin(w []HistoryPoint) float64 {
	var rev, net float64
	for _, p := range w {
		rev += p.Revenue
		net += p.NetIncome
	}
	if rev <= 0 {
		return 0
	}
	return net / rev
}

// fundamentalGuess is the blended fair-value-per-share estimate from the most
// recent snapshot's trailing multiples; used by the quarterly buyback check.
func (c *Company) fundamentalGuess() float64 {
	epsTTM := 0.0
	if c.SharesOutstanding > 0 {
		epsTTM = c.TTMNetIncome() / c.SharesOutstanding
	}
	spsTTM := 0.0
	if c.SharesOutstanding > 0 {
		spsTTM = c.TTMRevenue() / c.SharesOutstanding
	}
	if epsTTM > 0 {
		return 0.7*epsTTM*18 + 0.3*spsTTM*3
	}
	return spsTTM * 3
}
