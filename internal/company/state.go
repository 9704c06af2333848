// Package company provides the company state machine: the per-company
// attributes, decision application, financial settlement, and the
// active/distressed/bankrupt lifecycle.
package company

import (
	"github.com/kestrelworks/venturesim/internal/econ"
)

// Standing is a company's financial lifecycle state.
type Standing uint8

const (
	StandingActive     Standing = iota
	StandingDistressed          // Cash below the failure threshold
	StandingBankrupt            // Terminal: no decisions, no demand allocation
)

// String returns a display name for a standing.
func (s Standing) String() string {
	switch s {
	case StandingActive:
		return "active"
	case StandingDistressed:
		return "distressed"
	case StandingBankrupt:
		return "bankrupt"
	default:
		return "unknown"
	}
}

// State is a company's full simulation state. Mutated only by the
// operations in this package during round resolution; callers treat
// returned values as the next state, never as shared storage.
type State struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPlayer bool   `json:"is_player"`

	// Financials
	Revenue          econ.Money `json:"revenue"`
	FixedCosts       econ.Money `json:"fixed_costs"`
	VariableCostRate float64    `json:"variable_cost_rate"` // Cost per unit sold
	Profit           econ.Money `json:"profit"`
	Cash             econ.Money `json:"cash"`
	Assets           econ.Money `json:"assets"`
	Liabilities      econ.Money `json:"liabilities"`

	// Operations
	Capacity     float64 `json:"capacity"`     // Units per round
	Utilization  float64 `json:"utilization"`  // 0-1
	QualityIndex float64 `json:"quality_index"` // 0-1
	Efficiency   float64 `json:"efficiency"`   // 0-1
	Satisfaction float64 `json:"customer_satisfaction"` // 0-1

	// Market position
	Price       econ.Money `json:"price"`
	MarketShare float64    `json:"market_share"` // 0-1
	BrandValue  float64    `json:"brand_value"`  // 0-100 scale

	// Resources
	EmployeeCount int `json:"employee_count"`

	// Lifecycle
	Standing       Standing `json:"standing"`
	DistressRounds int      `json:"distress_rounds"` // Consecutive rounds below threshold

	// Capital committed by this round's decisions, debited at settlement.
	// Zero between rounds.
	PendingSpend econ.Money `json:"pending_spend"`
}

// Active reports whether the company still participates in the market.
// Distressed companies keep trading; bankrupt ones are out.
func (s State) Active() bool {
	return s.Standing != StandingBankrupt
}

// Factors extracts the demand-side attractiveness inputs.
func (s State) Factors() econ.CompanyFactors {
	return econ.CompanyFactors{
		Quality:      s.QualityIndex,
		BrandValue:   s.BrandValue,
		Satisfaction: s.Satisfaction,
	}
}
