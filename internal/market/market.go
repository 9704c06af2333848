// Package market turns company positions into market-level state and
// splits the round's demand between the survivors.
package market

import (
	"math"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/events"
)

// State is the shared market condition snapshot carried across rounds.
type State struct {
	DemandLevel float64 `json:"demand_level"` // Total units demanded this round
	AvgPrice    float64 `json:"avg_price"`
	PriceIndex  float64 `json:"price_index"` // AvgPrice relative to BasePrice
	Competition float64 `json:"competition"` // Rivalry intensity 0-1

	// Structural parameters, fixed at setup.
	BasePrice  float64 `json:"base_price"`
	BaseDemand float64 `json:"base_demand"`
	Elasticity float64 `json:"elasticity"` // Negative

	Indicators econ.Indicators   `json:"indicators"`
	Trend      econ.TrendFactors `json:"trend"`
}

// DefaultState returns the standard launch conditions.
func DefaultState() State {
	return State{
		DemandLevel: 1000,
		AvgPrice:    100,
		PriceIndex:  1,
		Competition: 0.5,
		BasePrice:   100,
		BaseDemand:  1000,
		Elasticity:  -1.5,
		Indicators:  econ.DefaultIndicators(),
	}
}

// Result is one round of aggregation: the next market state plus each
// active company's demand share and allocated units.
type Result struct {
	State     State
	Shares    map[string]float64
	Allocated map[string]float64
}

// Aggregate recomputes the market from the active companies and the
// round's merged event impact, then allocates demand.
//
// Event effects land here: demand scales the base level, price
// sensitivity scales elasticity, competition shifts the structural
// rivalry, and indicator effects move the macro numbers inside their
// bands. Per-company demand follows from price position and company
// attractiveness; the allocation floors every active company at
// epsilonShare and sums exactly to the demand level.
func Aggregate(st State, group []company.State, impact events.Impact, epsilonShare float64) Result {
	next := st

	next.Indicators = econ.ClampIndicators(econ.Indicators{
		GDPGrowth:    impact.ApplyTo(events.MetricGDPGrowth, st.Indicators.GDPGrowth),
		Inflation:    impact.ApplyTo(events.MetricInflation, st.Indicators.Inflation),
		InterestRate: impact.ApplyTo(events.MetricInterestRate, st.Indicators.InterestRate),
	})

	elasticity := impact.ApplyTo(events.MetricPriceSensitivity, st.Elasticity)
	baseDemand := impact.ApplyTo(events.MetricDemand, st.BaseDemand)
	if baseDemand < 0 {
		baseDemand = 0
	}

	active := activeOnly(group)
	if len(active) == 0 {
		next.DemandLevel = 0
		return Result{State: next, Shares: map[string]float64{}, Allocated: map[string]float64{}}
	}

	next.AvgPrice = avgPrice(active)
	if st.BasePrice > econ.Epsilon {
		next.PriceIndex = next.AvgPrice / st.BasePrice
	}
	next.Competition = clamp01(impact.ApplyTo(events.MetricCompetition, rivalry(active)))

	cond := econ.Conditions{
		AvgPrice:   next.AvgPrice,
		Elasticity: elasticity,
		Intensity:  next.Competition,
		Indicators: next.Indicators,
		Trend:      st.Trend,
	}

	total := 0.0
	for _, c := range active {
		total += econ.Demand(econ.Float(c.Price), baseDemand, cond, c.Factors())
	}
	next.DemandLevel = total

	shares := demandShares(active, next.AvgPrice, epsilonShare)
	alloc := make(map[string]float64, len(active))
	for id, sh := range shares {
		alloc[id] = next.DemandLevel * sh
	}

	return Result{State: next, Shares: shares, Allocated: alloc}
}

func activeOnly(group []company.State) []company.State {
	out := make([]company.State, 0, len(group))
	for _, c := range group {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}

// avgPrice weights prices by prior market share, falling back to the
// plain mean before any shares exist.
func avgPrice(group []company.State) float64 {
	var wsum, weighted, plain float64
	for _, c := range group {
		p := econ.Float(c.Price)
		plain += p
		if c.MarketShare > 0 {
			wsum += c.MarketShare
			weighted += p * c.MarketShare
		}
	}
	if wsum > econ.Epsilon {
		return weighted / wsum
	}
	return plain / float64(len(group))
}

// rivalry rises with the field size and with price dispersion.
func rivalry(group []company.State) float64 {
	n := float64(len(group))
	mean := 0.0
	for _, c := range group {
		mean += econ.Float(c.Price)
	}
	mean /= n

	cv := 0.0
	if mean > econ.Epsilon && len(group) > 1 {
		var ss float64
		for _, c := range group {
			d := econ.Float(c.Price) - mean
			ss += d * d
		}
		cv = math.Sqrt(ss/n) / mean
	}
	return clamp01(0.2 + 0.1*(n-1) + 0.5*cv)
}

// demandShares splits demand by attractiveness, flooring every active
// company at eps so nobody is starved outright. Shares sum to 1.
func demandShares(group []company.State, avg, eps float64) map[string]float64 {
	n := len(group)
	shares := make(map[string]float64, n)

	if eps < 0 {
		eps = 0
	}
	if float64(n)*eps >= 1 {
		for _, c := range group {
			shares[c.ID] = 1 / float64(n)
		}
		return shares
	}

	attr := make([]float64, n)
	total := 0.0
	for i, c := range group {
		attr[i] = econ.Attractiveness(econ.Float(c.Price), avg, c.Factors())
		total += attr[i]
	}

	rem := 1 - float64(n)*eps
	for i, c := range group {
		w := 1 / float64(n)
		if total > econ.Epsilon {
			w = attr[i] / total
		}
		shares[c.ID] = eps + rem*w
	}
	return shares
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
