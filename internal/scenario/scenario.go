// Package scenario loads game setups from YAML documents and carries the
// built-in launch scenario. Decoding is strict: an unknown field anywhere
// in a document is a load error, so a typoed bound or decision category
// never silently becomes a no-op.
package scenario

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/engine"
	"github.com/kestrelworks/venturesim/internal/events"
	"github.com/kestrelworks/venturesim/internal/market"
	"github.com/kestrelworks/venturesim/internal/policy"
)

// Scenario is one parsed game document. Zero sections fall back to the
// engine defaults when built.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Seed        int64        `yaml:"seed"`
	MaxRounds   int          `yaml:"max_rounds"`
	Settings    SettingsDoc  `yaml:"settings,omitempty"`
	Market      MarketDoc    `yaml:"market,omitempty"`
	Companies   []CompanyDoc `yaml:"companies"`
	Events      []EventDoc   `yaml:"events,omitempty"`
}

// SettingsDoc overrides individual game tunables. Nil fields keep the
// engine defaults.
type SettingsDoc struct {
	FailureThreshold  *float64        `yaml:"failure_threshold,omitempty"`
	UtilizationCap    *float64        `yaml:"utilization_cap,omitempty"`
	SalaryPerEmployee *float64        `yaml:"salary_per_employee,omitempty"`
	EpsilonShare      *float64        `yaml:"epsilon_share,omitempty"`
	Bounds            *company.Bounds `yaml:"bounds,omitempty"` // Replaces all bounds at once
	CapacityUnitCost  *float64        `yaml:"capacity_unit_cost,omitempty"`
	HiringCost        *float64        `yaml:"hiring_cost,omitempty"`
}

// MarketDoc overrides launch market conditions.
type MarketDoc struct {
	BasePrice    *float64 `yaml:"base_price,omitempty"`
	BaseDemand   *float64 `yaml:"base_demand,omitempty"`
	Elasticity   *float64 `yaml:"elasticity,omitempty"`
	Competition  *float64 `yaml:"competition,omitempty"`
	GDPGrowth    *float64 `yaml:"gdp_growth,omitempty"`
	Inflation    *float64 `yaml:"inflation,omitempty"`
	InterestRate *float64 `yaml:"interest_rate,omitempty"`
}

// CompanyDoc describes one company at launch.
type CompanyDoc struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	Player           bool    `yaml:"player,omitempty"`
	Profile          string  `yaml:"profile,omitempty"` // Rivals only
	Cash             float64 `yaml:"cash"`
	Assets           float64 `yaml:"assets"`
	Liabilities      float64 `yaml:"liabilities"`
	FixedCosts       float64 `yaml:"fixed_costs"`
	VariableCostRate float64 `yaml:"variable_cost_rate"`
	Capacity         float64 `yaml:"capacity"`
	Quality          float64 `yaml:"quality"`
	Efficiency       float64 `yaml:"efficiency"`
	Satisfaction     float64 `yaml:"satisfaction"`
	Price            float64 `yaml:"price"`
	MarketShare      float64 `yaml:"market_share"`
	BrandValue       float64 `yaml:"brand_value"`
	Employees        int     `yaml:"employees"`
}

// EventDoc describes one catalog event.
type EventDoc struct {
	ID           string               `yaml:"id"`
	Name         string               `yaml:"name"`
	Description  string               `yaml:"description,omitempty"`
	Kind         string               `yaml:"kind"`
	Probability  float64              `yaml:"probability,omitempty"`
	TriggerRound int                  `yaml:"trigger_round,omitempty"`
	Duration     int                  `yaml:"duration"`
	Impact       map[string]EffectDoc `yaml:"impact"`
	Prereq       *PrereqDoc           `yaml:"prereq,omitempty"`
	Trigger      *TriggerDoc          `yaml:"trigger,omitempty"`
}

// EffectDoc is one metric effect: scale first, then shift.
type EffectDoc struct {
	Factor float64 `yaml:"factor,omitempty"`
	Delta  float64 `yaml:"delta,omitempty"`
}

// PrereqDoc gates event activation.
type PrereqDoc struct {
	MinRound int     `yaml:"min_round,omitempty"`
	MaxRound int     `yaml:"max_round,omitempty"`
	Metric   string  `yaml:"metric,omitempty"`
	Op       string  `yaml:"op,omitempty"`
	Value    float64 `yaml:"value,omitempty"`
}

// TriggerDoc describes what player behavior trips a decision event.
type TriggerDoc struct {
	PriceCutPct      float64 `yaml:"price_cut_pct,omitempty"`
	MarketingAbove   float64 `yaml:"marketing_above,omitempty"`
	CapacityAddAbove float64 `yaml:"capacity_add_above,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	sc, err := Parse(f)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes one scenario document from r.
func Parse(r io.Reader) (Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("parse: %w", err)
	}
	return sc, nil
}

// Build converts the scenario into a session setup. Company and catalog
// validation beyond what the document can express happens in
// engine.NewSession.
func (sc Scenario) Build() (engine.Setup, error) {
	cfg := engine.DefaultConfig()
	if sc.MaxRounds > 0 {
		cfg.MaxRounds = sc.MaxRounds
	}
	sc.Settings.apply(&cfg)

	mkt := market.DefaultState()
	sc.Market.apply(&mkt)

	companies := make([]company.State, 0, len(sc.Companies))
	profiles := make(map[string]policy.Profile, len(sc.Companies))
	for _, doc := range sc.Companies {
		companies = append(companies, doc.state())
		if doc.Player {
			if doc.Profile != "" {
				return engine.Setup{}, fmt.Errorf("company %q: player takes no profile", doc.ID)
			}
			continue
		}
		prof := policy.ProfileBalanced
		if doc.Profile != "" {
			p, err := policy.ParseProfile(doc.Profile)
			if err != nil {
				return engine.Setup{}, fmt.Errorf("company %q: %w", doc.ID, err)
			}
			prof = p
		}
		profiles[doc.ID] = prof
	}

	// Demand scales with the field so each launch allocation lands near
	// the per-company base level.
	mkt.DemandLevel = mkt.BaseDemand * float64(len(companies))

	defs := make([]events.Definition, 0, len(sc.Events))
	for _, doc := range sc.Events {
		def, err := doc.definition()
		if err != nil {
			return engine.Setup{}, err
		}
		defs = append(defs, def)
	}

	return engine.Setup{
		Seed:      sc.Seed,
		Config:    cfg,
		Companies: companies,
		Profiles:  profiles,
		Market:    mkt,
		Events:    defs,
	}, nil
}

func (d SettingsDoc) apply(cfg *engine.Config) {
	if d.FailureThreshold != nil {
		cfg.FailureThreshold = *d.FailureThreshold
	}
	if d.UtilizationCap != nil {
		cfg.UtilizationCap = *d.UtilizationCap
	}
	if d.SalaryPerEmployee != nil {
		cfg.SalaryPerEmployee = *d.SalaryPerEmployee
	}
	if d.EpsilonShare != nil {
		cfg.EpsilonShare = *d.EpsilonShare
	}
	if d.Bounds != nil {
		cfg.Rules.Bounds = *d.Bounds
	}
	if d.CapacityUnitCost != nil {
		cfg.Rules.CapacityUnitCost = *d.CapacityUnitCost
	}
	if d.HiringCost != nil {
		cfg.Rules.HiringCost = *d.HiringCost
	}
}

func (d MarketDoc) apply(mkt *market.State) {
	if d.BasePrice != nil {
		mkt.BasePrice = *d.BasePrice
		mkt.AvgPrice = *d.BasePrice
	}
	if d.BaseDemand != nil {
		mkt.BaseDemand = *d.BaseDemand
	}
	if d.Elasticity != nil {
		mkt.Elasticity = *d.Elasticity
	}
	if d.Competition != nil {
		mkt.Competition = *d.Competition
	}
	if d.GDPGrowth != nil {
		mkt.Indicators.GDPGrowth = *d.GDPGrowth
	}
	if d.Inflation != nil {
		mkt.Indicators.Inflation = *d.Inflation
	}
	if d.InterestRate != nil {
		mkt.Indicators.InterestRate = *d.InterestRate
	}
}

func (d CompanyDoc) state() company.State {
	return company.State{
		ID:               d.ID,
		Name:             d.Name,
		IsPlayer:         d.Player,
		FixedCosts:       econ.NewMoney(d.FixedCosts),
		VariableCostRate: d.VariableCostRate,
		Cash:             econ.NewMoney(d.Cash),
		Assets:           econ.NewMoney(d.Assets),
		Liabilities:      econ.NewMoney(d.Liabilities),
		Capacity:         d.Capacity,
		QualityIndex:     d.Quality,
		Efficiency:       d.Efficiency,
		Satisfaction:     d.Satisfaction,
		Price:            econ.NewMoney(d.Price),
		MarketShare:      d.MarketShare,
		BrandValue:       d.BrandValue,
		EmployeeCount:    d.Employees,
	}
}

func (d EventDoc) definition() (events.Definition, error) {
	kind, err := events.ParseKind(d.Kind)
	if err != nil {
		return events.Definition{}, fmt.Errorf("event %q: %w", d.ID, err)
	}

	impact := make(events.Impact, len(d.Impact))
	for metric, eff := range d.Impact {
		impact[events.Metric(metric)] = events.Effect{Factor: eff.Factor, Delta: eff.Delta}
	}

	def := events.Definition{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Kind:         kind,
		Probability:  d.Probability,
		TriggerRound: d.TriggerRound,
		Impact:       impact,
		Duration:     d.Duration,
	}
	if d.Prereq != nil {
		op := events.CompareOp(d.Prereq.Op)
		switch op {
		case events.OpGTE, events.OpLTE:
		case "":
			if d.Prereq.Metric != "" {
				return events.Definition{}, fmt.Errorf("event %q: prereq metric %q needs an op", d.ID, d.Prereq.Metric)
			}
		default:
			return events.Definition{}, fmt.Errorf("event %q: unknown prereq op %q", d.ID, d.Prereq.Op)
		}
		def.Prereq = events.Prereq{
			MinRound: d.Prereq.MinRound,
			MaxRound: d.Prereq.MaxRound,
			Metric:   d.Prereq.Metric,
			Op:       op,
			Value:    d.Prereq.Value,
		}
	}
	if d.Trigger != nil {
		def.Trigger = events.DecisionTrigger{
			PriceCutPct:      d.Trigger.PriceCutPct,
			MarketingAbove:   d.Trigger.MarketingAbove,
			CapacityAddAbove: d.Trigger.CapacityAddAbove,
		}
	}
	return def, nil
}
