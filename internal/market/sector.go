package market

// Sector tracks the shared backdrop for one sector label: a growth baseline,
// sentiment, volatility and a valuation-multiple adjustment that companies fold
// into their target P/E.
type Sector struct {
	Name           string  `json:"name"`
	BaselineGrowth float64 `json:"baseline_growth"` // weekly fractional revenue growth
	Volatility     float64 `json:"volatility"`
	Sentiment      float64 `json:"sentiment"`
	PEAdjust       float64 `json:"pe_adjust"`
}

const (
	sectorGrowthFloor = -0.005
	sectorGrowthCap   = 0.01
	sectorVolFloor    = 0.008
	sectorVolCap      = 0.06
)

func NewSector(name string, rng *Rand) *Sector {
	return &Sector{
		Name:           name,
		BaselineGrowth: rng.TruncNormal(0.0015, 0.001, sectorGrowthFloor, 0.005),
		Volatility:     rng.TruncNormal(0.018, 0.005, sectorVolFloor, 0.04),
		Sentiment:      rng.TruncNormal(0, 0.2, -0.5, 0.5),
		PEAdjust:       1,
	}
}

// Update advances the sector one week against the current macro backdrop.
func (s *Sector) Update(m *Macro, rng *Rand) {
	s.Sentiment = clamp(0.9*s.Sentiment+0.1*m.Sentiment+rng.TruncNormal(0, 0.06, -0.18, 0.18), -1, 1)

	weeklyInflation := m.Inflation / WeeksPerYear
	s.BaselineGrowth = clamp(s.BaselineGrowth+rng.Normal(0, 0.0004)+0.05*weeklyInflation,
		sectorGrowthFloor, sectorGrowthCap)

	s.PEAdjust = clamp(1+0.3*s.Sentiment, 0.7, 1.3)
	s.Volatility = clamp(s.Volatility+rng.Normal(0, 0.001), sectorVolFloor, sectorVolCap)
}
