package events

import (
	"testing"

	"github.com/kestrelworks/venturesim/internal/entropy"
)

func mustCatalog(t *testing.T, defs ...Definition) Catalog {
	t.Helper()
	c, err := NewCatalog(defs)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func quietView(round int) View {
	return View{Round: round, DemandLevel: 1000, PriceIndex: 1.0, Competition: 0.5}
}

func TestScheduledFiresAtExactRound(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:           "reg_change",
		Name:         "Regulatory Change",
		Kind:         KindScheduled,
		TriggerRound: 5,
		Impact:       Impact{MetricCosts: {Factor: 1.15}},
		Duration:     1,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	var active []ActiveEvent
	for round := 1; round <= 6; round++ {
		var fired []Fired
		active, fired, _ = eng.Resolve(active, round, quietView(round), DecisionSignal{}, rng)

		wantFired := round == 5
		if (len(fired) == 1) != wantFired {
			t.Errorf("round %d: fired %d events, want fired=%v", round, len(fired), wantFired)
		}
	}
}

func TestDurationWindow(t *testing.T) {
	// Duration 2, activated round 3: in effect rounds 3 and 4, gone in 5.
	cat := mustCatalog(t, Definition{
		ID:           "sensitivity_shift",
		Kind:         KindScheduled,
		TriggerRound: 3,
		Impact:       Impact{MetricPriceSensitivity: {Factor: 1.1}},
		Duration:     2,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	var active []ActiveEvent
	for round := 1; round <= 5; round++ {
		var merged Impact
		active, _, merged = eng.Resolve(active, round, quietView(round), DecisionSignal{}, rng)

		inEffect := merged.Effect(MetricPriceSensitivity).Factor != 1
		want := round == 3 || round == 4
		if inEffect != want {
			t.Errorf("round %d: impact in effect = %v, want %v", round, inEffect, want)
		}
	}
}

func TestRandomRollDeterministic(t *testing.T) {
	def := Definition{
		ID:          "market_crash",
		Kind:        KindRandom,
		Probability: 0.5,
		Impact:      Impact{MetricRevenue: {Factor: 0.7}},
		Duration:    2,
	}

	run := func(seed int64) []int {
		eng := NewEngine(mustCatalog(t, def))
		rng := entropy.NewSource(seed)
		var rounds []int
		var active []ActiveEvent
		for round := 1; round <= 30; round++ {
			var fired []Fired
			active, fired, _ = eng.Resolve(active, round, quietView(round), DecisionSignal{}, rng)
			if len(fired) > 0 {
				rounds = append(rounds, round)
			}
		}
		return rounds
	}

	a, b := run(42), run(42)
	if len(a) != len(b) {
		t.Fatalf("same seed fired %d vs %d times", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed fired at different rounds: %v vs %v", a, b)
		}
	}
	if len(a) == 0 {
		t.Error("probability 0.5 over 30 rounds never fired; expected some activations")
	}
}

func TestRandomProbabilityEdges(t *testing.T) {
	never := Definition{ID: "never", Kind: KindRandom, Probability: 0, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}
	always := Definition{ID: "always", Kind: KindRandom, Probability: 1, Impact: Impact{MetricDemand: {Factor: 1.1}}, Duration: 1}

	eng := NewEngine(mustCatalog(t, never, always))
	rng := entropy.NewSource(3)

	var active []ActiveEvent
	for round := 1; round <= 10; round++ {
		var fired []Fired
		active, fired, _ = eng.Resolve(active, round, quietView(round), DecisionSignal{}, rng)
		if len(fired) != 1 || fired[0].EventID != "always" {
			t.Fatalf("round %d: fired %+v, want exactly the probability-1 event", round, fired)
		}
	}
}

func TestActiveEventNotRerolled(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:          "boom",
		Kind:        KindRandom,
		Probability: 1,
		Impact:      Impact{MetricDemand: {Factor: 1.25}},
		Duration:    3,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(5)

	active, fired, _ := eng.Resolve(nil, 1, quietView(1), DecisionSignal{}, rng)
	if len(fired) != 1 {
		t.Fatalf("round 1: fired %d, want 1", len(fired))
	}

	// Rounds 2 and 3 the event is still running; it must not fire again.
	for round := 2; round <= 3; round++ {
		active, fired, _ = eng.Resolve(active, round, quietView(round), DecisionSignal{}, rng)
		if len(fired) != 0 {
			t.Errorf("round %d: active event re-fired", round)
		}
		if len(active) != 1 {
			t.Errorf("round %d: active set %d, want 1", round, len(active))
		}
	}

	// Round 4: expired, eligible again, probability 1 re-fires.
	_, fired, _ = eng.Resolve(active, 4, quietView(4), DecisionSignal{}, rng)
	if len(fired) != 1 {
		t.Errorf("round 4: expired event did not become eligible again")
	}
}

func TestDecisionEventTripsOnPriceCut(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:       "price_war",
		Kind:     KindDecision,
		Trigger:  DecisionTrigger{PriceCutPct: 0.10},
		Impact:   Impact{MetricCompetition: {Delta: 0.15}},
		Duration: 2,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	_, fired, _ := eng.Resolve(nil, 1, quietView(1), DecisionSignal{PriceChangePct: -0.15}, rng)
	if len(fired) != 1 {
		t.Fatalf("aggressive price cut did not trigger the decision event")
	}

	_, fired, _ = eng.Resolve(nil, 2, quietView(2), DecisionSignal{PriceChangePct: -0.02}, rng)
	if len(fired) != 0 {
		t.Error("mild price cut triggered the decision event")
	}
}

func TestPrereqRoundWindow(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:          "late_game",
		Kind:        KindRandom,
		Probability: 1,
		Prereq:      Prereq{MinRound: 4, MaxRound: 5},
		Impact:      Impact{MetricDemand: {Factor: 1.1}},
		Duration:    1,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	for round := 1; round <= 7; round++ {
		_, fired, _ := eng.Resolve(nil, round, quietView(round), DecisionSignal{}, rng)
		want := round >= 4 && round <= 5
		if (len(fired) == 1) != want {
			t.Errorf("round %d: fired=%v, want %v", round, len(fired) == 1, want)
		}
	}
}

func TestPrereqThreshold(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:           "crowding",
		Kind:         KindScheduled,
		TriggerRound: 1,
		Prereq:       Prereq{Metric: "competition", Op: OpGTE, Value: 0.7},
		Impact:       Impact{MetricDemand: {Factor: 0.9}},
		Duration:     1,
	})
	rng := entropy.NewSource(1)

	calm := quietView(1)
	calm.Competition = 0.4
	if _, fired, _ := NewEngine(cat).Resolve(nil, 1, calm, DecisionSignal{}, rng); len(fired) != 0 {
		t.Error("threshold prereq fired below its value")
	}

	crowded := quietView(1)
	crowded.Competition = 0.8
	if _, fired, _ := NewEngine(cat).Resolve(nil, 1, crowded, DecisionSignal{}, rng); len(fired) != 1 {
		t.Error("threshold prereq did not fire at its value")
	}
}

func TestPrereqUnknownMetricNeverTriggers(t *testing.T) {
	cat := mustCatalog(t, Definition{
		ID:           "phantom",
		Kind:         KindScheduled,
		TriggerRound: 1,
		Prereq:       Prereq{Metric: "net_promoter_score", Op: OpGTE, Value: 0},
		Impact:       Impact{MetricDemand: {Factor: 1.5}},
		Duration:     1,
	})
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	for round := 1; round <= 3; round++ {
		_, fired, _ := eng.Resolve(nil, round, quietView(round), DecisionSignal{}, rng)
		if len(fired) != 0 {
			t.Fatalf("round %d: event with unresolvable prerequisite fired", round)
		}
	}
}

func TestMergedImpactActivationOrder(t *testing.T) {
	// A scheduled and a random event hit the same metric in the same round:
	// factors must compose, not overwrite.
	cat := mustCatalog(t,
		Definition{ID: "sched", Kind: KindScheduled, TriggerRound: 1, Impact: Impact{MetricDemand: {Factor: 1.2}}, Duration: 1},
		Definition{ID: "rand", Kind: KindRandom, Probability: 1, Impact: Impact{MetricDemand: {Factor: 0.5, Delta: 10}}, Duration: 1},
	)
	eng := NewEngine(cat)
	rng := entropy.NewSource(1)

	_, _, merged := eng.Resolve(nil, 1, quietView(1), DecisionSignal{}, rng)
	e := merged.Effect(MetricDemand)
	if e.Factor != 1.2*0.5 {
		t.Errorf("merged factor = %v, want %v", e.Factor, 1.2*0.5)
	}
	if e.Delta != 10 {
		t.Errorf("merged delta = %v, want 10", e.Delta)
	}
}
