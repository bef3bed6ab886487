package market

// Macro is the process-wide weekly economic state shared by every sector and
// company in a universe. It is mutated only by Update and only by the owning
// universe's tick loop.
type Macro struct {
	Week         int     `json:"week"`
	InterestRate float64 `json:"interest_rate"` // annualized
	Inflation    float64 `json:"inflation"`     // annualized
	Sentiment    float64 `json:"sentiment"`     // [-1, 1]
	Volatility   float64 `json:"volatility"`

	// LastShock is the sentiment jolt landed by this week's macro shock, zero
	// in shock-free weeks. Companies read it to trace the shock in their event
	// ledgers.
	LastShock float64 `json:"last_shock,omitempty"`
}

const (
	macroRateFloor = 0.0
	macroRateCap   = 0.18
	macroInflFloor = -0.02
	macroInflCap   = 0.15
	macroVolFloor  = 0.008
	macroVolCap    = 0.05

	macroShockProb = 0.01
)

func NewMacro(rng *Rand) *Macro {
	return &Macro{
		InterestRate: rng.TruncNormal(0.045, 0.01, 0.01, 0.09),
		Inflation:    rng.TruncNormal(0.025, 0.008, 0.0, 0.06),
		Sentiment:    rng.TruncNormal(0, 0.2, -0.5, 0.5),
		Volatility:   rng.TruncNormal(0.015, 0.003, macroVolFloor, 0.03),
	}
}

// Update advances the environment one week.
func (m *Macro) Update(rng *Rand) {
	m.Week++

	m.Sentiment = clamp(0.95*m.Sentiment+rng.TruncNormal(0, 0.05, -0.15, 0.15), -1, 1)
	m.InterestRate = clamp(m.InterestRate+rng.Normal(0, 0.0008), macroRateFloor, macroRateCap)
	m.Inflation = clamp(m.Inflation+rng.Normal(0, 0.0006), macroInflFloor, macroInflCap)

	m.LastShock = 0
	if rng.Bernoulli(macroShockProb) {
		shock := rng.TruncNormal(0, 0.45, -0.9, 0.9)
		m.LastShock = shock
		m.Sentiment = clamp(m.Sentiment+shock, -1, 1)
		m.InterestRate = clamp(m.InterestRate-shock*0.008, macroRateFloor, macroRateCap)
		m.Volatility = clamp(m.Volatility*1.6, macroVolFloor, macroVolCap)
	} else {
		m.Volatility = clamp(m.Volatility*0.985, macroVolFloor, macroVolCap)
	}
}

// ImpliedMarketMultiple maps the current rate to a broad P/E benchmark. Cheap
// money supports richer multiples.
func (m *Macro) ImpliedMarketMultiple() float64 {
	return clamp(22-(m.InterestRate-0.04)*150, 10, 34)
}

// ExpectedWeeklyEquityReturn is the systemic return component shared by every
// company: a fixed baseline less a rate drag plus a sentiment lift.
func (m *Macro) ExpectedWeeklyEquityReturn() float64 {
	return clamp(0.0015-(m.InterestRate-0.04)*0.01+m.Sentiment*0.001, 0.0002, 0.0035)
}
