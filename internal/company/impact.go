// Event impact application to company state.
package company

import (
	"github.com/kestrelworks/venturesim/internal/events"
)

// ApplyEventImpact applies the merged round impact to a company's
// persistent metrics: factor on the pre-event baseline first, then the
// delta. Revenue and cost effects are settlement-time modifiers and are
// not applied here. Bankrupt companies are untouched.
func ApplyEventImpact(s State, impact events.Impact) State {
	if !s.Active() || len(impact) == 0 {
		return s
	}

	s.MarketShare = clamp01(impact.ApplyTo(events.MetricMarketShare, s.MarketShare))
	s.Efficiency = clamp01(impact.ApplyTo(events.MetricEfficiency, s.Efficiency))
	s.QualityIndex = clamp01(impact.ApplyTo(events.MetricQuality, s.QualityIndex))
	s.Satisfaction = clamp01(impact.ApplyTo(events.MetricSatisfaction, s.Satisfaction))

	s.BrandValue = clampf(impact.ApplyTo(events.MetricBrandValue, s.BrandValue), 0, 100)

	s.Capacity = impact.ApplyTo(events.MetricCapacity, s.Capacity)
	if s.Capacity < 0 {
		s.Capacity = 0
	}

	return s
}
