package events

import (
	"math"
	"strings"
	"testing"
)

func TestNewCatalogRejectsUnknownMetric(t *testing.T) {
	_, err := NewCatalog([]Definition{{
		ID:       "bad",
		Kind:     KindRandom,
		Impact:   Impact{"share_of_wallet": {Delta: 0.1}},
		Duration: 1,
	}})
	if err == nil {
		t.Fatal("catalog with unknown impact metric accepted")
	}
	if !strings.Contains(err.Error(), "share_of_wallet") {
		t.Errorf("error %q does not name the bad metric", err)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
	}{
		{"empty id", Definition{Kind: KindRandom, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}},
		{"zero duration", Definition{ID: "e", Kind: KindRandom, Impact: Impact{MetricDemand: {Factor: 1.1}}}},
		{"probability above one", Definition{ID: "e", Kind: KindRandom, Probability: 1.2, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}},
		{"scheduled without round", Definition{ID: "e", Kind: KindScheduled, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}},
		{"empty impact", Definition{ID: "e", Kind: KindRandom, Duration: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog([]Definition{tc.def}); err == nil {
				t.Error("invalid definition accepted")
			}
		})
	}
}

func TestNewCatalogRejectsDuplicateID(t *testing.T) {
	def := Definition{ID: "twice", Kind: KindRandom, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}
	if _, err := NewCatalog([]Definition{def, def}); err == nil {
		t.Error("duplicate event id accepted")
	}
}

func TestNewCatalogNormalizesFactor(t *testing.T) {
	c, err := NewCatalog([]Definition{{
		ID:       "delta_only",
		Kind:     KindRandom,
		Impact:   Impact{MetricMarketShare: {Delta: -0.1}},
		Duration: 2,
	}})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	e := c.Defs()[0].Impact[MetricMarketShare]
	if e.Factor != 1 {
		t.Errorf("unset factor normalized to %v, want 1", e.Factor)
	}
}

func TestImpactApplyFactorThenDelta(t *testing.T) {
	im := Impact{MetricRevenue: {Factor: 1.2, Delta: 50}}

	// The factor scales the baseline, the delta lands after: 100*1.2 + 50.
	got := im.ApplyTo(MetricRevenue, 100)
	if math.Abs(got-170) > 1e-12 {
		t.Errorf("ApplyTo = %.4f, want 170", got)
	}
}

func TestImpactFoldComposition(t *testing.T) {
	merged := Impact{}
	merged.fold(Impact{MetricDemand: {Factor: 1.25}})
	merged.fold(Impact{MetricDemand: {Factor: 0.8, Delta: 30}})
	merged.fold(Impact{MetricDemand: {Delta: -10}})

	e := merged.Effect(MetricDemand)
	if math.Abs(e.Factor-1.0) > 1e-12 {
		t.Errorf("merged factor = %.6f, want 1.0 (1.25 * 0.8)", e.Factor)
	}
	if math.Abs(e.Delta-20) > 1e-12 {
		t.Errorf("merged delta = %.4f, want 20", e.Delta)
	}
}

func TestImpactEffectIdentityWhenAbsent(t *testing.T) {
	e := Impact{}.Effect(MetricCosts)
	if e.Factor != 1 || e.Delta != 0 {
		t.Errorf("absent effect = %+v, want identity", e)
	}
	if got := (Impact{}).ApplyTo(MetricCosts, 123.4); got != 123.4 {
		t.Errorf("identity ApplyTo = %v, want 123.4", got)
	}
}

func TestDecisionTriggerTripped(t *testing.T) {
	cut := DecisionTrigger{PriceCutPct: 0.10}

	if !cut.tripped(DecisionSignal{PriceChangePct: -0.12}) {
		t.Error("12% price cut should trip a 10% trigger")
	}
	if cut.tripped(DecisionSignal{PriceChangePct: -0.05}) {
		t.Error("5% price cut should not trip a 10% trigger")
	}
	if cut.tripped(DecisionSignal{PriceChangePct: 0.12}) {
		t.Error("price raise should not trip a cut trigger")
	}
	if (DecisionTrigger{}).tripped(DecisionSignal{PriceChangePct: -0.5}) {
		t.Error("zero trigger must never trip")
	}
}
