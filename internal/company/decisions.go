// Decision bundles: validation, bounds, and application to company state.
package company

import (
	"fmt"
	"math"

	"github.com/kestrelworks/venturesim/internal/econ"
)

// DecisionBundle is the set of actions a company takes in one round. Every
// field is optional; nil means no action in that category. The set of
// categories is closed; scenario parsing rejects anything else.
type DecisionBundle struct {
	Price             *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	MarketingBudget   *float64 `json:"marketing_budget,omitempty" yaml:"marketing_budget,omitempty"`
	CapacityDelta     *float64 `json:"capacity_delta,omitempty" yaml:"capacity_delta,omitempty"`
	QualityInvestment *float64 `json:"quality_investment,omitempty" yaml:"quality_investment,omitempty"`
	Hires             *int     `json:"hires,omitempty" yaml:"hires,omitempty"`
	EquipmentSpend    *float64 `json:"equipment_spend,omitempty" yaml:"equipment_spend,omitempty"`
}

// Empty reports whether the bundle takes no action at all.
func (b DecisionBundle) Empty() bool {
	return b.Price == nil && b.MarketingBudget == nil && b.CapacityDelta == nil &&
		b.QualityInvestment == nil && b.Hires == nil && b.EquipmentSpend == nil
}

// Bounds are the per-field decision limits.
type Bounds struct {
	MaxPriceChangePct    float64 `json:"max_price_change_pct" yaml:"max_price_change_pct"`
	MaxMarketingBudget   float64 `json:"max_marketing_budget" yaml:"max_marketing_budget"`
	MaxQualityInvestment float64 `json:"max_quality_investment" yaml:"max_quality_investment"`
	MaxEquipmentSpend    float64 `json:"max_equipment_spend" yaml:"max_equipment_spend"`
	MaxCapacityDelta     float64 `json:"max_capacity_delta" yaml:"max_capacity_delta"`
	MaxHires             int     `json:"max_hires" yaml:"max_hires"`
}

// DefaultBounds returns the standard decision limits.
func DefaultBounds() Bounds {
	return Bounds{
		MaxPriceChangePct:    0.20,
		MaxMarketingBudget:   50000,
		MaxQualityInvestment: 50000,
		MaxEquipmentSpend:    100000,
		MaxCapacityDelta:     500,
		MaxHires:             50,
	}
}

// Rules bundle the bounds with the capital costs decisions incur.
type Rules struct {
	Bounds           Bounds  `json:"bounds" yaml:"bounds"`
	CapacityUnitCost float64 `json:"capacity_unit_cost" yaml:"capacity_unit_cost"` // Cost per unit of capacity added
	HiringCost       float64 `json:"hiring_cost" yaml:"hiring_cost"`               // One-off cost per hire
}

// DefaultRules returns bounds and capital costs at their defaults.
func DefaultRules() Rules {
	return Rules{
		Bounds:           DefaultBounds(),
		CapacityUnitCost: 20,
		HiringCost:       300,
	}
}

// InvalidDecisionError reports a bundle field outside its bound. The round
// is not resolved and no state is mutated when the player's bundle fails.
type InvalidDecisionError struct {
	Field string
	Value float64
	Bound string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid decision: %s %.2f violates %s", e.Field, e.Value, e.Bound)
}

// Validate checks every bundle field against the bounds and the current
// state, returning the first violation in field order. Bankrupt companies
// accept no decisions at all.
func Validate(s State, b DecisionBundle, bounds Bounds) error {
	if s.Standing == StandingBankrupt && !b.Empty() {
		return &InvalidDecisionError{Field: "bundle", Bound: "bankrupt companies accept no decisions"}
	}

	if b.Price != nil {
		cur := econ.Float(s.Price)
		if *b.Price <= 0 {
			return &InvalidDecisionError{Field: "price", Value: *b.Price, Bound: "price must be positive"}
		}
		if cur > 0 {
			change := math.Abs(*b.Price-cur) / cur
			if change > bounds.MaxPriceChangePct+1e-12 {
				return &InvalidDecisionError{
					Field: "price",
					Value: *b.Price,
					Bound: fmt.Sprintf("price change within ±%.0f%% of %.2f", bounds.MaxPriceChangePct*100, cur),
				}
			}
		}
	}

	if b.MarketingBudget != nil {
		if *b.MarketingBudget < 0 || *b.MarketingBudget > bounds.MaxMarketingBudget {
			return &InvalidDecisionError{
				Field: "marketing_budget",
				Value: *b.MarketingBudget,
				Bound: fmt.Sprintf("marketing budget within [0, %.0f]", bounds.MaxMarketingBudget),
			}
		}
	}

	if b.CapacityDelta != nil {
		if *b.CapacityDelta > bounds.MaxCapacityDelta {
			return &InvalidDecisionError{
				Field: "capacity_delta",
				Value: *b.CapacityDelta,
				Bound: fmt.Sprintf("capacity delta at most %.0f", bounds.MaxCapacityDelta),
			}
		}
		if s.Capacity+*b.CapacityDelta < 0 {
			return &InvalidDecisionError{
				Field: "capacity_delta",
				Value: *b.CapacityDelta,
				Bound: fmt.Sprintf("capacity must stay non-negative (current %.0f)", s.Capacity),
			}
		}
	}

	if b.QualityInvestment != nil {
		if *b.QualityInvestment < 0 || *b.QualityInvestment > bounds.MaxQualityInvestment {
			return &InvalidDecisionError{
				Field: "quality_investment",
				Value: *b.QualityInvestment,
				Bound: fmt.Sprintf("quality investment within [0, %.0f]", bounds.MaxQualityInvestment),
			}
		}
	}

	if b.Hires != nil {
		if *b.Hires > bounds.MaxHires {
			return &InvalidDecisionError{
				Field: "hires",
				Value: float64(*b.Hires),
				Bound: fmt.Sprintf("hires at most %d per round", bounds.MaxHires),
			}
		}
		if s.EmployeeCount+*b.Hires < 0 {
			return &InvalidDecisionError{
				Field: "hires",
				Value: float64(*b.Hires),
				Bound: fmt.Sprintf("headcount must stay non-negative (current %d)", s.EmployeeCount),
			}
		}
	}

	if b.EquipmentSpend != nil {
		if *b.EquipmentSpend < 0 || *b.EquipmentSpend > bounds.MaxEquipmentSpend {
			return &InvalidDecisionError{
				Field: "equipment_spend",
				Value: *b.EquipmentSpend,
				Bound: fmt.Sprintf("equipment spend within [0, %.0f]", bounds.MaxEquipmentSpend),
			}
		}
	}

	return nil
}

// ApplyDecisions validates the bundle and applies it, returning the next
// state. The input state is never mutated: on any violation the error
// carries the offending field and bound, and the caller keeps the original.
func ApplyDecisions(s State, b DecisionBundle, rules Rules) (State, error) {
	if err := Validate(s, b, rules.Bounds); err != nil {
		return s, err
	}
	return apply(s, b, rules), nil
}

// Clamp pulls every bundle field to its nearest valid value for the given
// state. The result always passes Validate.
func Clamp(s State, b DecisionBundle, bounds Bounds) DecisionBundle {
	return clampBundle(s, b, bounds)
}

// ApplyDecisionsClamped clamps every field to the nearest valid value and
// applies the result. Used for AI bundles, which never fail the round.
func ApplyDecisionsClamped(s State, b DecisionBundle, rules Rules) State {
	if s.Standing == StandingBankrupt {
		return s
	}
	return apply(s, clampBundle(s, b, rules.Bounds), rules)
}

// apply commits a validated or clamped bundle. Spends accumulate into
// PendingSpend for the settlement debit.
func apply(s State, b DecisionBundle, rules Rules) State {
	spend := econ.Zero()

	if b.Price != nil {
		s.Price = econ.NewMoney(*b.Price)
	}

	if b.MarketingBudget != nil && *b.MarketingBudget > 0 {
		// Marketing builds brand; share follows brand through allocation.
		s.BrandValue += *b.MarketingBudget / 10000.0
		if s.BrandValue > 100 {
			s.BrandValue = 100
		}
		spend = econ.Add(spend, econ.NewMoney(*b.MarketingBudget))
	}

	if b.CapacityDelta != nil {
		s.Capacity += *b.CapacityDelta
		if s.Capacity < 0 {
			s.Capacity = 0
		}
		if *b.CapacityDelta > 0 {
			spend = econ.Add(spend, econ.NewMoney(*b.CapacityDelta*rules.CapacityUnitCost))
		}
	}

	if b.QualityInvestment != nil && *b.QualityInvestment > 0 {
		gain := *b.QualityInvestment / 50000.0
		if gain > 0.1 {
			gain = 0.1
		}
		s.QualityIndex = clamp01(s.QualityIndex + gain)
		spend = econ.Add(spend, econ.NewMoney(*b.QualityInvestment))
	}

	if b.Hires != nil {
		s.EmployeeCount += *b.Hires
		if s.EmployeeCount < 0 {
			s.EmployeeCount = 0
		}
		if *b.Hires > 0 {
			spend = econ.Add(spend, econ.NewMoney(float64(*b.Hires)*rules.HiringCost))
		}
	}

	if b.EquipmentSpend != nil && *b.EquipmentSpend > 0 {
		gain := *b.EquipmentSpend / 100000.0
		if gain > 0.1 {
			gain = 0.1
		}
		s.Efficiency = clamp01(s.Efficiency + gain)
		spend = econ.Add(spend, econ.NewMoney(*b.EquipmentSpend))
	}

	s.PendingSpend = econ.Add(s.PendingSpend, spend)
	return s
}

// clampBundle pulls every out-of-bounds field to its nearest valid value.
func clampBundle(s State, b DecisionBundle, bounds Bounds) DecisionBundle {
	out := DecisionBundle{}

	if b.Price != nil {
		cur := econ.Float(s.Price)
		p := *b.Price
		if cur > 0 {
			p = clampf(p, cur*(1-bounds.MaxPriceChangePct), cur*(1+bounds.MaxPriceChangePct))
		} else if p < 0.01 {
			p = 0.01
		}
		out.Price = &p
	}
	if b.MarketingBudget != nil {
		v := clampf(*b.MarketingBudget, 0, bounds.MaxMarketingBudget)
		out.MarketingBudget = &v
	}
	if b.CapacityDelta != nil {
		v := clampf(*b.CapacityDelta, -s.Capacity, bounds.MaxCapacityDelta)
		out.CapacityDelta = &v
	}
	if b.QualityInvestment != nil {
		v := clampf(*b.QualityInvestment, 0, bounds.MaxQualityInvestment)
		out.QualityInvestment = &v
	}
	if b.Hires != nil {
		h := *b.Hires
		if h > bounds.MaxHires {
			h = bounds.MaxHires
		}
		if s.EmployeeCount+h < 0 {
			h = -s.EmployeeCount
		}
		out.Hires = &h
	}
	if b.EquipmentSpend != nil {
		v := clampf(*b.EquipmentSpend, 0, bounds.MaxEquipmentSpend)
		out.EquipmentSpend = &v
	}

	return out
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clampf(v, 0, 1)
}
