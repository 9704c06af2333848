// Package events provides the event engine: catalog definitions, trigger
// resolution, the active-event set, and impact merging.
package events

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies how an event activates.
type Kind uint8

const (
	KindRandom    Kind = iota // Probability roll each round while inactive
	KindScheduled             // Fires at an exact round
	KindDecision              // Tripped by the player's own decisions
)

// String returns the catalog name for a kind.
func (k Kind) String() string {
	switch k {
	case KindRandom:
		return "random"
	case KindScheduled:
		return "scheduled"
	case KindDecision:
		return "decision"
	default:
		return "unknown"
	}
}

// ParseKind converts a catalog string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "random":
		return KindRandom, nil
	case "scheduled":
		return KindScheduled, nil
	case "decision":
		return KindDecision, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Metric names a target an event impact may touch. The set is closed:
// catalogs referencing anything else are rejected at load time.
type Metric string

// Company-level targets.
const (
	MetricRevenue      Metric = "revenue"
	MetricCosts        Metric = "costs"
	MetricMarketShare  Metric = "market_share"
	MetricEfficiency   Metric = "efficiency"
	MetricQuality      Metric = "quality"
	MetricSatisfaction Metric = "customer_satisfaction"
	MetricBrandValue   Metric = "brand_value"
	MetricCapacity     Metric = "capacity"
)

// Market-level targets.
const (
	MetricDemand           Metric = "demand"
	MetricPriceSensitivity Metric = "price_sensitivity"
	MetricCompetition      Metric = "competition"
	MetricGDPGrowth        Metric = "gdp_growth"
	MetricInflation        Metric = "inflation"
	MetricInterestRate     Metric = "interest_rate"
)

var knownMetrics = map[Metric]bool{
	MetricRevenue:          true,
	MetricCosts:            true,
	MetricMarketShare:      true,
	MetricEfficiency:       true,
	MetricQuality:          true,
	MetricSatisfaction:     true,
	MetricBrandValue:       true,
	MetricCapacity:         true,
	MetricDemand:           true,
	MetricPriceSensitivity: true,
	MetricCompetition:      true,
	MetricGDPGrowth:        true,
	MetricInflation:        true,
	MetricInterestRate:     true,
}

// KnownMetric reports whether a metric name is in the closed target set.
func KnownMetric(m Metric) bool {
	return knownMetrics[m]
}

// Effect is one event's influence on one metric. Factor 0 means unset and
// is normalized to 1: an event cannot zero a metric outright, it scales
// or shifts it.
type Effect struct {
	Factor float64 `json:"factor,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

// Impact maps target metrics to their combined effect.
type Impact map[Metric]Effect

// Effect returns the merged effect for a metric, identity if absent.
func (im Impact) Effect(m Metric) Effect {
	e, ok := im[m]
	if !ok || e.Factor == 0 {
		e.Factor = 1
	}
	return e
}

// ApplyTo applies the merged effect for a metric to a value: the factor
// scales the pre-event baseline first, then the delta shifts it. A factor
// therefore never amplifies a delta contributed in the same round.
func (im Impact) ApplyTo(m Metric, v float64) float64 {
	e := im.Effect(m)
	return v*e.Factor + e.Delta
}

// fold accumulates another impact into this one: factors compose
// multiplicatively, deltas sum. Call order is activation order.
func (im Impact) fold(other Impact) {
	for m, e := range other {
		cur, ok := im[m]
		if !ok || cur.Factor == 0 {
			cur.Factor = 1
		}
		f := e.Factor
		if f == 0 {
			f = 1
		}
		cur.Factor *= f
		cur.Delta += e.Delta
		im[m] = cur
	}
}

// CompareOp is the comparison used by a prerequisite threshold.
type CompareOp string

const (
	OpGTE CompareOp = "gte"
	OpLTE CompareOp = "lte"
)

// Prereq gates activation. Zero values mean unconstrained. Metric names a
// market/player reading compared against Value; a name outside the known
// prerequisite set degrades the event to never-triggers (logged once).
type Prereq struct {
	MinRound int       `json:"min_round,omitempty"`
	MaxRound int       `json:"max_round,omitempty"`
	Metric   string    `json:"metric,omitempty"`
	Op       CompareOp `json:"op,omitempty"`
	Value    float64   `json:"value,omitempty"`
}

// DecisionTrigger describes what player behavior trips a decision event.
// Every non-zero field must be satisfied in the same round.
type DecisionTrigger struct {
	PriceCutPct      float64 `json:"price_cut_pct,omitempty"`      // Price dropped by at least this fraction
	MarketingAbove   float64 `json:"marketing_above,omitempty"`    // Marketing budget at or above
	CapacityAddAbove float64 `json:"capacity_add_above,omitempty"` // Capacity added at or above
}

// DecisionSignal summarizes the player's applied bundle for trigger checks.
type DecisionSignal struct {
	PriceChangePct  float64 // Signed fraction, negative = cut
	MarketingBudget float64
	CapacityDelta   float64
}

func (t DecisionTrigger) tripped(sig DecisionSignal) bool {
	if t.PriceCutPct == 0 && t.MarketingAbove == 0 && t.CapacityAddAbove == 0 {
		return false
	}
	if t.PriceCutPct > 0 && sig.PriceChangePct > -t.PriceCutPct {
		return false
	}
	if t.MarketingAbove > 0 && sig.MarketingBudget < t.MarketingAbove {
		return false
	}
	if t.CapacityAddAbove > 0 && sig.CapacityDelta < t.CapacityAddAbove {
		return false
	}
	return true
}

// Definition is an immutable event from the catalog.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`

	Probability  float64 `json:"probability,omitempty"`   // Random kind
	TriggerRound int     `json:"trigger_round,omitempty"` // Scheduled kind

	Impact   Impact          `json:"impact"`
	Duration int             `json:"duration"`
	Prereq   Prereq          `json:"prereq,omitempty"`
	Trigger  DecisionTrigger `json:"trigger,omitempty"` // Decision kind
}

// ActiveEvent is an event currently in effect. It carries a copy of the
// impact so snapshots replay without consulting the catalog.
type ActiveEvent struct {
	EventID        string `json:"event_id"`
	Name           string `json:"name"`
	Impact         Impact `json:"impact"`
	Remaining      int    `json:"remaining"`
	ActivatedRound int    `json:"activated_round"`
}

// Fired records an activation for the round result.
type Fired struct {
	EventID     string `json:"event_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Round       int    `json:"round"`
	Duration    int    `json:"duration"`
}

// Catalog is the validated, ordered set of event definitions for a game.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

// NewCatalog validates definitions and normalizes their effects. Impact
// targets outside the closed metric set are a load error, caught here so
// the engine never sees an unresolvable impact.
func NewCatalog(defs []Definition) (Catalog, error) {
	c := Catalog{byID: make(map[string]int, len(defs))}

	for _, def := range defs {
		if def.ID == "" {
			return Catalog{}, fmt.Errorf("event with empty id")
		}
		if _, dup := c.byID[def.ID]; dup {
			return Catalog{}, fmt.Errorf("duplicate event id %q", def.ID)
		}
		if def.Duration < 1 {
			return Catalog{}, fmt.Errorf("event %q: duration %d, must be >= 1", def.ID, def.Duration)
		}
		switch def.Kind {
		case KindRandom:
			if def.Probability < 0 || def.Probability > 1 {
				return Catalog{}, fmt.Errorf("event %q: probability %.3f outside [0, 1]", def.ID, def.Probability)
			}
		case KindScheduled:
			if def.TriggerRound < 1 {
				return Catalog{}, fmt.Errorf("event %q: scheduled with trigger round %d, must be >= 1", def.ID, def.TriggerRound)
			}
		case KindDecision:
			// Trigger thresholds are free-form; zero trigger just never trips.
		default:
			return Catalog{}, fmt.Errorf("event %q: unknown kind %d", def.ID, def.Kind)
		}

		if len(def.Impact) == 0 {
			return Catalog{}, fmt.Errorf("event %q: empty impact", def.ID)
		}
		var bad []string
		normalized := make(Impact, len(def.Impact))
		for m, e := range def.Impact {
			if !KnownMetric(m) {
				bad = append(bad, string(m))
				continue
			}
			if e.Factor == 0 {
				e.Factor = 1
			}
			normalized[m] = e
		}
		if len(bad) > 0 {
			sort.Strings(bad)
			return Catalog{}, fmt.Errorf("event %q: unknown impact metric(s): %s", def.ID, strings.Join(bad, ", "))
		}
		def.Impact = normalized

		c.byID[def.ID] = len(c.defs)
		c.defs = append(c.defs, def)
	}

	return c, nil
}

// Defs returns the catalog definitions in load order.
func (c Catalog) Defs() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of definitions.
func (c Catalog) Len() int {
	return len(c.defs)
}
