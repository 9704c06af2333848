// Package policy drives the AI rivals. Each rival follows a fixed
// profile whose tuning table shapes pricing, spending, and expansion;
// the produced bundles go through the clamped apply and never fail a
// round.
package policy

import (
	"fmt"
)

// Profile selects a rival's behavioral tuning.
type Profile uint8

const (
	ProfileBalanced Profile = iota
	ProfileCostLeader
	ProfileQualityFocused
)

func (p Profile) String() string {
	switch p {
	case ProfileBalanced:
		return "balanced"
	case ProfileCostLeader:
		return "cost_leader"
	case ProfileQualityFocused:
		return "quality_focused"
	default:
		return "unknown"
	}
}

// ParseProfile maps a scenario profile name to its Profile.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "balanced":
		return ProfileBalanced, nil
	case "cost_leader":
		return ProfileCostLeader, nil
	case "quality_focused":
		return ProfileQualityFocused, nil
	default:
		return ProfileBalanced, fmt.Errorf("unknown policy profile %q", s)
	}
}

// Tuning defines how a profile weighs its moves.
type Tuning struct {
	// PricePull is the fraction of the gap to the target price closed per round.
	PricePull float64

	// PricePremium positions the target price relative to the market average.
	PricePremium float64

	// Shares of discretionary cash committed per category, each in [0, 1].
	MarketingShare float64
	QualityShare   float64
	EquipmentShare float64

	// ExpandBias scales capacity additions when utilization runs hot.
	ExpandBias float64
}

// profileTunings maps each profile to its tuning.
var profileTunings = map[Profile]Tuning{
	ProfileBalanced: {
		PricePull:      0.6,
		PricePremium:   0.02,
		MarketingShare: 0.30,
		QualityShare:   0.25,
		EquipmentShare: 0.20,
		ExpandBias:     0.5,
	},
	ProfileCostLeader: {
		PricePull:      0.8,   // Chases the market average hard
		PricePremium:   -0.06, // Undercuts it
		MarketingShare: 0.15,
		QualityShare:   0.10,
		EquipmentShare: 0.45, // Efficiency is the moat
		ExpandBias:     0.7,
	},
	ProfileQualityFocused: {
		PricePull:      0.5,
		PricePremium:   0.10, // Premium pricing
		MarketingShare: 0.35,
		QualityShare:   0.45,
		EquipmentShare: 0.10,
		ExpandBias:     0.35,
	},
}

// Tuning returns the profile's parameter table, falling back to the
// balanced table for an unknown profile.
func (p Profile) Tuning() Tuning {
	if t, ok := profileTunings[p]; ok {
		return t
	}
	return profileTunings[ProfileBalanced]
}
