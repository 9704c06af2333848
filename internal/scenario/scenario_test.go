package scenario

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/engine"
	"github.com/kestrelworks/venturesim/internal/events"
	"github.com/kestrelworks/venturesim/internal/policy"
)

const testDoc = `
name: stress-test
description: tighter margins, smaller field
seed: 7
max_rounds: 8
settings:
  failure_threshold: -20000
  salary_per_employee: 120
  bounds:
    max_price_change_pct: 0.15
    max_marketing_budget: 30000
    max_quality_investment: 30000
    max_equipment_spend: 60000
    max_capacity_delta: 300
    max_hires: 25
market:
  base_price: 90
  base_demand: 800
  elasticity: -1.2
companies:
  - id: venture
    name: Venture Co
    player: true
    cash: 40000
    assets: 150000
    liabilities: 100000
    fixed_costs: 18000
    variable_cost_rate: 52
    capacity: 900
    quality: 0.7
    efficiency: 0.8
    satisfaction: 0.7
    price: 92
    market_share: 0.5
    brand_value: 48
    employees: 90
  - id: rival
    name: Rival Corp
    profile: cost_leader
    cash: 40000
    assets: 150000
    liabilities: 100000
    fixed_costs: 18000
    variable_cost_rate: 48
    capacity: 1000
    quality: 0.65
    efficiency: 0.85
    satisfaction: 0.7
    price: 88
    market_share: 0.5
    brand_value: 42
    employees: 95
events:
  - id: supply_shock
    name: Supply Shock
    kind: random
    probability: 0.2
    duration: 2
    impact:
      costs: {factor: 1.3}
    prereq:
      min_round: 2
      metric: inflation
      op: gte
      value: 0.05
  - id: launch_push
    name: Launch Push
    kind: decision
    duration: 1
    trigger:
      marketing_above: 20000
    impact:
      demand: {delta: 100}
`

func TestParseFullDocument(t *testing.T) {
	sc, err := Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if sc.Name != "stress-test" || sc.Seed != 7 || sc.MaxRounds != 8 {
		t.Fatalf("header mismatch: %q seed %d rounds %d", sc.Name, sc.Seed, sc.MaxRounds)
	}
	if sc.Settings.FailureThreshold == nil || *sc.Settings.FailureThreshold != -20000 {
		t.Fatalf("failure threshold not parsed: %+v", sc.Settings.FailureThreshold)
	}
	if sc.Settings.Bounds == nil || sc.Settings.Bounds.MaxHires != 25 {
		t.Fatalf("bounds not parsed: %+v", sc.Settings.Bounds)
	}
	if sc.Market.BasePrice == nil || *sc.Market.BasePrice != 90 {
		t.Fatalf("base price not parsed: %+v", sc.Market.BasePrice)
	}
	if len(sc.Companies) != 2 || !sc.Companies[0].Player || sc.Companies[1].Profile != "cost_leader" {
		t.Fatalf("companies not parsed: %+v", sc.Companies)
	}
	if len(sc.Events) != 2 {
		t.Fatalf("events not parsed: %d", len(sc.Events))
	}
	if p := sc.Events[0].Prereq; p == nil || p.Metric != "inflation" || p.Op != "gte" || p.MinRound != 2 {
		t.Fatalf("prereq not parsed: %+v", sc.Events[0].Prereq)
	}
	if tr := sc.Events[1].Trigger; tr == nil || tr.MarketingAbove != 20000 {
		t.Fatalf("trigger not parsed: %+v", sc.Events[1].Trigger)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	docs := map[string]string{
		"top level":     "name: x\nturbo: true\n",
		"company field": "companies:\n  - id: a\n    warp_drive: 9\n",
		"event field":   "events:\n  - id: e\n    kind: random\n    duration: 1\n    severity: high\n",
	}
	for name, doc := range docs {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: unknown field accepted", name)
		}
	}
}

func TestBuildAppliesOverrides(t *testing.T) {
	sc, err := Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	setup, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cfg := setup.Config
	if cfg.MaxRounds != 8 || cfg.FailureThreshold != -20000 || cfg.SalaryPerEmployee != 120 {
		t.Fatalf("config overrides not applied: %+v", cfg)
	}
	if cfg.UtilizationCap != engine.DefaultConfig().UtilizationCap {
		t.Fatalf("untouched setting changed: %v", cfg.UtilizationCap)
	}
	if cfg.Rules.Bounds.MaxHires != 25 || cfg.Rules.Bounds.MaxPriceChangePct != 0.15 {
		t.Fatalf("bounds not replaced: %+v", cfg.Rules.Bounds)
	}
	if cfg.Rules.CapacityUnitCost != engine.DefaultConfig().Rules.CapacityUnitCost {
		t.Fatalf("capacity unit cost changed: %v", cfg.Rules.CapacityUnitCost)
	}

	mkt := setup.Market
	if mkt.BasePrice != 90 || mkt.AvgPrice != 90 || mkt.Elasticity != -1.2 {
		t.Fatalf("market overrides not applied: %+v", mkt)
	}
	if mkt.DemandLevel != 1600 {
		t.Fatalf("demand level = %v, want base 800 x 2 companies", mkt.DemandLevel)
	}

	if got := econ.Float(setup.Companies[0].Cash); math.Abs(got-40000) > 1e-9 {
		t.Fatalf("player cash = %v", got)
	}
	if setup.Profiles["rival"] != policy.ProfileCostLeader {
		t.Fatalf("rival profile = %v", setup.Profiles["rival"])
	}

	if setup.Events[0].Kind != events.KindRandom || setup.Events[0].Prereq.Op != events.OpGTE {
		t.Fatalf("event not converted: %+v", setup.Events[0])
	}
	if setup.Events[1].Trigger.MarketingAbove != 20000 {
		t.Fatalf("trigger not converted: %+v", setup.Events[1])
	}

	if _, err := engine.NewSession(setup); err != nil {
		t.Fatalf("NewSession on built setup: %v", err)
	}
}

func TestBuildRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"player with profile", func(sc *Scenario) { sc.Companies[0].Profile = "balanced" }},
		{"unknown rival profile", func(sc *Scenario) { sc.Companies[1].Profile = "monopolist" }},
		{"unknown event kind", func(sc *Scenario) { sc.Events[0].Kind = "cosmic" }},
		{"unknown prereq op", func(sc *Scenario) {
			sc.Events[0].Prereq = &PrereqDoc{Metric: "inflation", Op: "eq", Value: 1}
		}},
		{"prereq metric without op", func(sc *Scenario) {
			sc.Events[0].Prereq = &PrereqDoc{Metric: "inflation", Value: 0.05}
		}},
	}
	for _, tc := range cases {
		sc := Default()
		tc.mutate(&sc)
		if _, err := sc.Build(); err == nil {
			t.Errorf("%s: Build accepted bad document", tc.name)
		}
	}
}

func TestDefaultScenarioStartsClean(t *testing.T) {
	sc := Default()
	setup, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(setup.Companies) != 4 {
		t.Fatalf("companies = %d, want 4", len(setup.Companies))
	}
	players := 0
	for _, c := range setup.Companies {
		if c.IsPlayer {
			players++
		}
	}
	if players != 1 {
		t.Fatalf("players = %d, want 1", players)
	}
	if len(setup.Profiles) != 3 {
		t.Fatalf("profiles = %d, want 3", len(setup.Profiles))
	}
	if setup.Market.DemandLevel != 4000 {
		t.Fatalf("demand level = %v, want 4000", setup.Market.DemandLevel)
	}
	if len(setup.Events) != 5 {
		t.Fatalf("events = %d, want 5", len(setup.Events))
	}

	s, err := engine.NewSession(setup)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s.RunRound(company.DecisionBundle{}); err != nil {
		t.Fatalf("first round on default scenario: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sc.Name != "stress-test" {
		t.Fatalf("name = %q", sc.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load accepted missing file")
	}
}
