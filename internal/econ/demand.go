// Demand model: how much of the market wants a company's product at its
// price, under the current macro conditions. All functions are pure and
// total: bad inputs clamp or floor, they never error.
package econ

import (
	"math"
)

// Epsilon floors denominators so ratio math stays total.
const Epsilon = 1e-9

// CompanyFactors are the company-side inputs to demand: how attractive the
// product itself is, independent of price.
type CompanyFactors struct {
	Quality      float64 // 0-1, neutral at 0.75
	BrandValue   float64 // 0-100 scale
	Satisfaction float64 // 0-1, neutral at 0.7
}

// Conditions are the market-side inputs to demand.
type Conditions struct {
	AvgPrice   float64 // Share-weighted average market price (reference for relative deviation)
	Elasticity float64 // Price elasticity of demand, negative (e.g. -1.5)
	Intensity  float64 // Competition intensity 0-1
	Indicators Indicators
	Trend      TrendFactors
}

// Demand computes the demand a company faces at the given price.
// Responds inversely to relative price deviation from the market average
// (power law scaled by elasticity), multiplied by the macro economy, market
// trends, company attractiveness, and competition damping. Never negative.
func Demand(price, baseDemand float64, c Conditions, f CompanyFactors) float64 {
	if baseDemand <= 0 {
		return 0
	}

	avg := c.AvgPrice
	if avg < Epsilon {
		avg = Epsilon
	}
	p := price
	if p < Epsilon {
		p = Epsilon
	}

	priceEffect := math.Pow(p/avg, c.Elasticity)

	d := baseDemand *
		EconomicMultiplier(c.Indicators) *
		priceEffect *
		(1.0 + c.Trend.Trend) *
		companyEffect(f) *
		(1.0 + c.Trend.Seasonal) *
		(1.0 + c.Trend.Cyclical)

	// Crowded markets split attention: intensity shaves up to 20%.
	d *= 1.0 - c.Intensity*0.2

	if d < 0 {
		return 0
	}
	return d
}

// EconomicMultiplier folds the macro indicators into one demand factor.
// Growth lifts demand, inflation erodes real purchasing power at half
// weight, interest dampens at a third.
func EconomicMultiplier(ind Indicators) float64 {
	gdp := 1.0 + ind.GDPGrowth
	inflation := 1.0 - ind.Inflation*0.5
	interest := 1.0 - ind.InterestRate*0.3

	m := gdp * inflation * interest
	if m < 0 {
		return 0
	}
	return m
}

// companyEffect converts quality, brand, and satisfaction into a demand
// multiplier around 1.0.
func companyEffect(f CompanyFactors) float64 {
	quality := 1.0 + (f.Quality-0.75)*0.5
	brand := 1.0 + (f.BrandValue/100.0)*0.3
	satisfaction := 1.0 + (f.Satisfaction-0.7)*0.4

	e := quality * brand * satisfaction
	if e < 0 {
		return 0
	}
	return e
}

// Attractiveness scores how appealing a company is to buyers relative to
// the market: cheaper than average, higher quality, stronger brand all pull
// share. Used by demand allocation, not by the demand level itself.
func Attractiveness(price, avgPrice float64, f CompanyFactors) float64 {
	if avgPrice < Epsilon {
		avgPrice = Epsilon
	}
	if price < Epsilon {
		price = Epsilon
	}

	priceTerm := math.Pow(avgPrice/price, 1.5)
	qualityTerm := 1.0 + (f.Quality-0.75)*0.5
	brandTerm := 1.0 + (f.BrandValue/100.0)*0.3

	a := priceTerm * qualityTerm * brandTerm
	if a < Epsilon {
		return Epsilon
	}
	return a
}
