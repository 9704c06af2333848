// Package analytics derives read-only views from round history: KPI trend
// series, composite rankings with a leaderboard, and console reports.
// Everything here consumes RoundResult values and never touches live
// session state.
package analytics

import (
	"math"

	"github.com/kestrelworks/venturesim/internal/engine"
)

// Metric names one KPI tracked per company each round. Values match the
// wire names on engine.KPISet.
type Metric string

const (
	MetricRevenue      Metric = "revenue"
	MetricProfit       Metric = "profit"
	MetricMargin       Metric = "profit_margin"
	MetricROI          Metric = "roi"
	MetricCash         Metric = "cash"
	MetricShare        Metric = "market_share"
	MetricSatisfaction Metric = "customer_satisfaction"
	MetricEfficiency   Metric = "operational_efficiency"
	MetricUtilization  Metric = "capacity_utilization"
	MetricBrand        Metric = "brand_value"
)

func (m Metric) from(k engine.KPISet) (float64, bool) {
	switch m {
	case MetricRevenue:
		return k.Revenue, true
	case MetricProfit:
		return k.Profit, true
	case MetricMargin:
		return k.ProfitMargin, true
	case MetricROI:
		return k.ROI, true
	case MetricCash:
		return k.Cash, true
	case MetricShare:
		return k.MarketShare, true
	case MetricSatisfaction:
		return k.Satisfaction, true
	case MetricEfficiency:
		return k.Efficiency, true
	case MetricUtilization:
		return k.Utilization, true
	case MetricBrand:
		return k.BrandValue, true
	default:
		return 0, false
	}
}

// Series extracts one company's KPI values across the history, oldest
// round first. Rounds where the company has no KPI entry are skipped.
func Series(history []engine.RoundResult, companyID string, m Metric) []float64 {
	var out []float64
	for _, r := range history {
		k, ok := r.KPIs[companyID]
		if !ok {
			continue
		}
		v, ok := m.from(k)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// Slope fits a least-squares line through the values and reports its slope
// normalized by the series mean, so metrics on different scales compare.
// Fewer than two points, or a zero mean, yield 0.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (float64(n)*sumXY - sumX*sumY) / denom

	mean := sumY / float64(n)
	if mean == 0 {
		return 0
	}
	return slope / math.Abs(mean)
}
