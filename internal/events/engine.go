// Event resolution: expiry, scheduled triggers, decision triggers, random
// rolls, and impact merging, in that fixed order every round.
package events

import (
	"log/slog"

	"github.com/kestrelworks/venturesim/internal/entropy"
)

// View is the slice of game state prerequisites may read. Assembled by the
// orchestrator each round.
type View struct {
	Round        int
	DemandLevel  float64
	PriceIndex   float64
	Competition  float64
	GDPGrowth    float64
	Inflation    float64
	InterestRate float64
	PlayerCash   float64
	PlayerShare  float64
}

// reading resolves a prerequisite metric name against the view.
func (v View) reading(name string) (float64, bool) {
	switch Metric(name) {
	case MetricDemand:
		return v.DemandLevel, true
	case "price_index":
		return v.PriceIndex, true
	case MetricCompetition:
		return v.Competition, true
	case MetricGDPGrowth:
		return v.GDPGrowth, true
	case MetricInflation:
		return v.Inflation, true
	case MetricInterestRate:
		return v.InterestRate, true
	case "player_cash":
		return v.PlayerCash, true
	case "player_market_share":
		return v.PlayerShare, true
	default:
		return 0, false
	}
}

// Engine holds the catalog and resolves the active set each round.
type Engine struct {
	catalog Catalog
	warned  map[string]bool
}

// NewEngine creates an event engine over a validated catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		warned:  make(map[string]bool),
	}
}

// Resolve advances the active set for one round and returns the survivors
// plus new activations, the activations themselves, and the merged impact
// of everything active after resolution. Order is fixed:
//
//  1. Decrement remaining duration; drop events reaching zero. An expiring
//     event's impact is not applied the round it expires.
//  2. Activate scheduled events whose trigger round is now.
//  3. Activate decision events tripped by the player's bundle.
//  4. Roll every inactive random event. The roll is drawn before the
//     prerequisite check so the stream position depends only on the active
//     set, keeping replays aligned.
//
// Same-round activations take effect immediately. Merged factors compose
// multiplicatively and deltas sum, in activation order.
func (e *Engine) Resolve(active []ActiveEvent, round int, view View, sig DecisionSignal, rng *entropy.Source) ([]ActiveEvent, []Fired, Impact) {
	next := make([]ActiveEvent, 0, len(active)+4)
	for _, ae := range active {
		ae.Remaining--
		if ae.Remaining > 0 {
			next = append(next, ae)
		}
	}

	inEffect := make(map[string]bool, len(next))
	for _, ae := range next {
		inEffect[ae.EventID] = true
	}

	var fired []Fired
	activate := func(def Definition) {
		next = append(next, ActiveEvent{
			EventID:        def.ID,
			Name:           def.Name,
			Impact:         def.Impact,
			Remaining:      def.Duration,
			ActivatedRound: round,
		})
		inEffect[def.ID] = true
		fired = append(fired, Fired{
			EventID:     def.ID,
			Name:        def.Name,
			Description: def.Description,
			Round:       round,
			Duration:    def.Duration,
		})
	}

	for _, def := range e.catalog.defs {
		if def.Kind != KindScheduled || inEffect[def.ID] {
			continue
		}
		if def.TriggerRound == round && e.prereqHolds(def, round, view) {
			activate(def)
		}
	}

	for _, def := range e.catalog.defs {
		if def.Kind != KindDecision || inEffect[def.ID] {
			continue
		}
		if def.Trigger.tripped(sig) && e.prereqHolds(def, round, view) {
			activate(def)
		}
	}

	for _, def := range e.catalog.defs {
		if def.Kind != KindRandom || inEffect[def.ID] {
			continue
		}
		roll := rng.Float64()
		if roll < def.Probability && e.prereqHolds(def, round, view) {
			activate(def)
		}
	}

	merged := Impact{}
	for _, ae := range next {
		merged.fold(ae.Impact)
	}

	return next, fired, merged
}

// prereqHolds evaluates an event's prerequisite against the view. A metric
// name the view cannot resolve makes the event never trigger; that conflict
// is logged once per event, not treated as fatal.
func (e *Engine) prereqHolds(def Definition, round int, view View) bool {
	p := def.Prereq
	if p.MinRound > 0 && round < p.MinRound {
		return false
	}
	if p.MaxRound > 0 && round > p.MaxRound {
		return false
	}
	if p.Metric == "" {
		return true
	}

	v, ok := view.reading(p.Metric)
	if !ok {
		if !e.warned[def.ID] {
			e.warned[def.ID] = true
			slog.Warn("event prerequisite references unknown metric, event will never trigger",
				"event", def.ID, "metric", p.Metric)
		}
		return false
	}

	switch p.Op {
	case OpGTE:
		return v >= p.Value
	case OpLTE:
		return v <= p.Value
	default:
		if !e.warned[def.ID] {
			e.warned[def.ID] = true
			slog.Warn("event prerequisite has unknown comparison, event will never trigger",
				"event", def.ID, "op", string(p.Op))
		}
		return false
	}
}
