// Macro-economic indicators and their per-round drift.
// Drift is sampled from simplex noise channels so the same seed always
// produces the same indicator path, independent of rng draw order.
package econ

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Indicators holds the macro-economic state of the market.
type Indicators struct {
	GDPGrowth    float64 `json:"gdp_growth"`    // Annualized growth rate, e.g. 0.02
	Inflation    float64 `json:"inflation"`     // e.g. 0.03
	InterestRate float64 `json:"interest_rate"` // e.g. 0.05
}

// DefaultIndicators returns the baseline macro conditions.
func DefaultIndicators() Indicators {
	return Indicators{
		GDPGrowth:    0.02,
		Inflation:    0.03,
		InterestRate: 0.05,
	}
}

// TrendFactors are the demand modifiers layered on top of the base demand:
// a 12-month seasonal swing, a slow growth trend, and an 8-round business
// cycle.
type TrendFactors struct {
	Seasonal float64 `json:"seasonal"`
	Trend    float64 `json:"trend"`
	Cyclical float64 `json:"cyclical"`
}

// seasonalPattern maps month (1-12) to a demand swing. Q4 peaks, Q1 dips.
var seasonalPattern = [13]float64{
	0,
	-0.10, -0.15, -0.05, 0.0,
	0.05, 0.10, 0.15, 0.10,
	0.05, 0.0, 0.10, 0.20,
}

// cyclePattern is the 8-round business cycle: boom, cooling, trough, recovery.
var cyclePattern = [8]float64{
	0.05, 0.03, 0.01, -0.01,
	-0.03, -0.05, -0.03, 0.01,
}

// Drift bounds. Indicators stay within sane macro ranges no matter what the
// noise channels produce.
const (
	gdpMin, gdpMax           = -0.05, 0.08
	inflationMin, inflationMax = 0.0, 0.12
	interestMin, interestMax   = 0.0, 0.15

	driftFrequency = 0.35 // Noise sample spacing per round
	driftAmplitude = 0.01 // Max per-round indicator shift
	trendBase      = 0.005
	trendAmplitude = 0.01
)

// Drift evolves macro indicators and trend factors round by round.
// Three independent noise channels, one per indicator, plus one for the
// long-run trend component.
type Drift struct {
	gdp   opensimplex.Noise
	infl  opensimplex.Noise
	intr  opensimplex.Noise
	trend opensimplex.Noise
}

// NewDrift creates a drift source from a seed. Channels are offset the same
// way layered map noise is seeded: seed, seed+1, seed+2, seed+3.
func NewDrift(seed int64) *Drift {
	return &Drift{
		gdp:   opensimplex.NewNormalized(seed),
		infl:  opensimplex.NewNormalized(seed + 1),
		intr:  opensimplex.NewNormalized(seed + 2),
		trend: opensimplex.NewNormalized(seed + 3),
	}
}

// Advance returns the indicators for the given round, shifted from the
// previous values by the round's noise sample and clamped to bounds.
func (d *Drift) Advance(prev Indicators, round int) Indicators {
	x := float64(round) * driftFrequency

	next := Indicators{
		GDPGrowth:    prev.GDPGrowth + shift(d.gdp.Eval2(x, 0)),
		Inflation:    prev.Inflation + shift(d.infl.Eval2(x, 0)),
		InterestRate: prev.InterestRate + shift(d.intr.Eval2(x, 0)),
	}

	next.GDPGrowth = clamp(next.GDPGrowth, gdpMin, gdpMax)
	next.Inflation = clamp(next.Inflation, inflationMin, inflationMax)
	next.InterestRate = clamp(next.InterestRate, interestMin, interestMax)
	return next
}

// ClampIndicators pulls each indicator back inside its valid band.
// Event deltas can push past the bounds drift respects.
func ClampIndicators(ind Indicators) Indicators {
	return Indicators{
		GDPGrowth:    clamp(ind.GDPGrowth, gdpMin, gdpMax),
		Inflation:    clamp(ind.Inflation, inflationMin, inflationMax),
		InterestRate: clamp(ind.InterestRate, interestMin, interestMax),
	}
}

// Trends returns the trend factors for the given round. Seasonal and
// cyclical components come from fixed tables; the growth trend carries a
// small noise wobble around its base rate.
func (d *Drift) Trends(round int) TrendFactors {
	month := (round % 12) + 1
	x := float64(round) * driftFrequency

	return TrendFactors{
		Seasonal: seasonalPattern[month],
		Trend:    trendBase + (d.trend.Eval2(x, 0)-0.5)*trendAmplitude*2,
		Cyclical: cyclePattern[round%8],
	}
}

// CapexAppeal returns a damping factor in (0, 1] for capacity-expansion
// decisions: cheap credit keeps appetite near 1, expensive credit cools it.
func CapexAppeal(interestRate float64) float64 {
	appeal := 1.0 - interestRate*3.0
	if appeal < 0.2 {
		appeal = 0.2
	}
	if appeal > 1.0 {
		appeal = 1.0
	}
	return appeal
}

// shift converts a normalized noise sample [0,1) into a bounded drift step.
func shift(sample float64) float64 {
	return (sample - 0.5) * driftAmplitude * 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
