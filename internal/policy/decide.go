package policy

import (
	"math"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/entropy"
)

// Outlook is the slice of market state a rival sees when deciding.
type Outlook struct {
	AvgPrice     float64
	DemandLevel  float64
	Competition  float64
	InterestRate float64
}

const (
	spendFraction   = 0.25 // Discretionary share of cash per round
	hotUtilization  = 0.85
	coldUtilization = 0.35
	expandStep      = 200.0
	shrinkStep      = 100.0
	staffPerUnits   = 20 // One hire per 20 units of new capacity
	priceJitter     = 0.02
	spendJitter     = 0.10
)

// Decide produces a rival's bundle for the round. The result is a pure
// function of state, outlook, and rng position; out-of-bounds values are
// left to the clamped apply.
func Decide(s company.State, o Outlook, p Profile, rng *entropy.Source) company.DecisionBundle {
	if !s.Active() {
		return company.DecisionBundle{}
	}

	t := p.Tuning()

	// Both draws happen on every path so the stream position stays
	// independent of the branches taken.
	pj := rng.Jitter(priceJitter)
	sj := rng.Jitter(spendJitter)

	var b company.DecisionBundle

	cur := econ.Float(s.Price)
	target := o.AvgPrice * (1 + t.PricePremium)
	if o.AvgPrice < econ.Epsilon {
		target = cur
	}
	price := (cur + (target-cur)*t.PricePull) * (1 + pj)
	if price < 1 {
		price = 1
	}
	b.Price = &price

	free := econ.Float(s.Cash) * spendFraction
	if free > 0 {
		scale := 1 + sj
		if m := free * t.MarketingShare * scale; m >= 1 {
			b.MarketingBudget = &m
		}
		if q := free * t.QualityShare * scale; q >= 1 {
			b.QualityInvestment = &q
		}
		if e := free * t.EquipmentShare * scale; e >= 1 {
			b.EquipmentSpend = &e
		}
	}

	// Expand when running hot and solvent; retreat when demand has
	// clearly moved elsewhere. High interest rates cool expansion.
	switch {
	case s.Utilization >= hotUtilization && free > 0:
		add := math.Round(expandStep * t.ExpandBias * econ.CapexAppeal(o.InterestRate))
		if add >= 1 {
			b.CapacityDelta = &add
			if hires := int(add) / staffPerUnits; hires > 0 {
				b.Hires = &hires
			}
		}
	case s.Utilization <= coldUtilization && s.Capacity > shrinkStep:
		cut := -shrinkStep
		b.CapacityDelta = &cut
	}

	return b
}
