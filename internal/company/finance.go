// Financial settlement and the distress/bankruptcy lifecycle.
package company

import (
	"github.com/kestrelworks/venturesim/internal/econ"
)

// Consecutive rounds below the failure threshold before bankruptcy.
const distressLimit = 3

// FinanceTerms are the settlement inputs beyond the company's own state.
// RevenueFactor/CostFactor of zero mean unset and are treated as 1, the
// same convention event effects use.
type FinanceTerms struct {
	UtilizationCap    float64 // Fraction of capacity sellable per round, 0 < cap <= 1
	SalaryPerEmployee float64 // Per-round payroll cost per head
	FailureThreshold  float64 // Cash below this marks the company distressed
	AvgPrice          float64 // Market average price, for satisfaction

	// Event modifiers for this round's settlement.
	RevenueFactor float64
	RevenueDelta  float64
	CostFactor    float64
	CostDelta     float64
}

// SettleFinancials computes the round's revenue, costs, profit, and cash
// movement from the allocated demand, then advances the distress state
// machine. Bankrupt companies are returned unchanged.
//
// Revenue is price times units actually sold: allocation capped at
// capacity times the utilization cap. Capital committed by this round's
// decisions is debited in full, never amortized.
func SettleFinancials(s State, demandAllocated float64, terms FinanceTerms) State {
	if !s.Active() {
		return s
	}

	cap := terms.UtilizationCap
	if cap <= 0 || cap > 1 {
		cap = 1
	}

	sellable := s.Capacity * cap
	units := demandAllocated
	if units > sellable {
		units = sellable
	}
	if units < 0 {
		units = 0
	}

	if s.Capacity > 0 {
		s.Utilization = units / s.Capacity
	} else {
		s.Utilization = 0
	}

	revenue := econ.MulUnits(s.Price, units)
	revenue = applyEffect(revenue, terms.RevenueFactor, terms.RevenueDelta)

	variable := econ.NewMoney(s.VariableCostRate * units)
	salaries := econ.NewMoney(terms.SalaryPerEmployee * float64(s.EmployeeCount))
	costs := econ.Add(econ.Add(variable, salaries), s.FixedCosts)
	costs = applyEffect(costs, terms.CostFactor, terms.CostDelta)
	if costs.IsNegative() {
		costs = econ.Zero()
	}

	s.Revenue = revenue
	s.Profit = econ.Sub(revenue, costs)
	s.Cash = econ.Sub(econ.Add(s.Cash, s.Profit), s.PendingSpend)
	s.PendingSpend = econ.Zero()

	s.Satisfaction = satisfactionFrom(s.QualityIndex, econ.Float(s.Price), terms.AvgPrice)

	return advanceStanding(s, terms.FailureThreshold)
}

// applyEffect scales a monetary amount by an event factor and shifts it by
// a delta, factor first.
func applyEffect(v econ.Money, factor, delta float64) econ.Money {
	if factor == 0 {
		factor = 1
	}
	out := econ.Scale(v, factor)
	if delta != 0 {
		out = econ.Add(out, econ.NewMoney(delta))
	}
	return out
}

// satisfactionFrom blends product quality with price competitiveness.
func satisfactionFrom(quality, price, avgPrice float64) float64 {
	if avgPrice < econ.Epsilon {
		return clamp01(quality)
	}
	priceFit := 1.0 - abs(price-avgPrice)/avgPrice
	if priceFit < 0 {
		priceFit = 0
	}
	return clamp01((quality + priceFit) / 2.0)
}

// advanceStanding runs the active → distressed → bankrupt machine. Cash
// strictly below the threshold counts a distress round; the third
// consecutive one is terminal. Recovery resets the streak.
func advanceStanding(s State, threshold float64) State {
	if s.Standing == StandingBankrupt {
		return s
	}

	if econ.Float(s.Cash) < threshold {
		s.DistressRounds++
		if s.DistressRounds >= distressLimit {
			s.Standing = StandingBankrupt
		} else {
			s.Standing = StandingDistressed
		}
		return s
	}

	s.DistressRounds = 0
	s.Standing = StandingActive
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
