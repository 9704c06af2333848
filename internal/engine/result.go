package engine

import (
	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/events"
	"github.com/kestrelworks/venturesim/internal/market"
)

// KPISet is the per-company scoreboard for one round, derived fresh from
// post-settlement state.
type KPISet struct {
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	ROI          float64 `json:"roi"`
	Cash         float64 `json:"cash"`
	MarketShare  float64 `json:"market_share"`
	Satisfaction float64 `json:"customer_satisfaction"`
	Efficiency   float64 `json:"operational_efficiency"`
	Utilization  float64 `json:"capacity_utilization"`
	BrandValue   float64 `json:"brand_value"`
}

// RoundResult is the immutable record of one resolved round. History is
// the sole input for trend analytics, so it carries full pre and post
// company snapshots.
type RoundResult struct {
	Round  int                  `json:"round"`
	Pre    []company.State      `json:"pre"`
	Post   []company.State      `json:"post"`
	Market market.State         `json:"market"`
	Fired  []events.Fired       `json:"events_fired"`
	Active []events.ActiveEvent `json:"active_events"`
	KPIs   map[string]KPISet    `json:"kpis"`
	Phase  Phase                `json:"phase"`
}

func computeKPIs(group []company.State) map[string]KPISet {
	out := make(map[string]KPISet, len(group))
	for _, c := range group {
		revenue := econ.Float(c.Revenue)
		profit := econ.Float(c.Profit)

		margin := 0.0
		if revenue > econ.Epsilon {
			margin = profit / revenue
		}
		roi := 0.0
		if assets := econ.Float(c.Assets); assets > econ.Epsilon {
			roi = profit / assets
		}

		out[c.ID] = KPISet{
			Revenue:      revenue,
			Profit:       profit,
			ProfitMargin: margin,
			ROI:          roi,
			Cash:         econ.Float(c.Cash),
			MarketShare:  c.MarketShare,
			Satisfaction: c.Satisfaction,
			Efficiency:   c.Efficiency,
			Utilization:  c.Utilization,
			BrandValue:   c.BrandValue,
		}
	}
	return out
}
