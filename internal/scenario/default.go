package scenario

// Default returns the built-in launch scenario: the player venture against
// three rivals with distinct pricing postures, on the standard market with
// the standard event catalog.
func Default() Scenario {
	return Scenario{
		Name:        "venture-launch",
		Description: "Four-way fight for a mid-market product category over twelve rounds.",
		Seed:        42,
		MaxRounds:   12,
		Companies: []CompanyDoc{
			{
				ID:               "venture",
				Name:             "Venture Co",
				Player:           true,
				Cash:             50000,
				Assets:           200000,
				Liabilities:      150000,
				FixedCosts:       20000,
				VariableCostRate: 55,
				Capacity:         1000,
				Quality:          0.75,
				Efficiency:       0.80,
				Satisfaction:     0.70,
				Price:            100,
				MarketShare:      0.25,
				BrandValue:       50,
				Employees:        100,
			},
			{
				ID:               "northwind",
				Name:             "Northwind Industries",
				Profile:          "cost_leader",
				Cash:             50000,
				Assets:           200000,
				Liabilities:      150000,
				FixedCosts:       20000,
				VariableCostRate: 50,
				Capacity:         1100,
				Quality:          0.70,
				Efficiency:       0.85,
				Satisfaction:     0.70,
				Price:            98,
				MarketShare:      0.25,
				BrandValue:       45,
				Employees:        100,
			},
			{
				ID:               "apex",
				Name:             "Apex Labs",
				Profile:          "quality_focused",
				Cash:             50000,
				Assets:           200000,
				Liabilities:      150000,
				FixedCosts:       20000,
				VariableCostRate: 60,
				Capacity:         900,
				Quality:          0.85,
				Efficiency:       0.75,
				Satisfaction:     0.75,
				Price:            110,
				MarketShare:      0.25,
				BrandValue:       60,
				Employees:        100,
			},
			{
				ID:               "meridian",
				Name:             "Meridian Group",
				Profile:          "balanced",
				Cash:             50000,
				Assets:           200000,
				Liabilities:      150000,
				FixedCosts:       20000,
				VariableCostRate: 55,
				Capacity:         1000,
				Quality:          0.75,
				Efficiency:       0.80,
				Satisfaction:     0.70,
				Price:            100,
				MarketShare:      0.25,
				BrandValue:       50,
				Employees:        100,
			},
		},
		Events: defaultEvents(),
	}
}

// defaultEvents is the standard catalog. Financial metrics scale, share
// and competition shift.
func defaultEvents() []EventDoc {
	return []EventDoc{
		{
			ID:          "market_crash",
			Name:        "Market Crash",
			Description: "Sudden market downturn affects all companies",
			Kind:        "random",
			Probability: 0.10,
			Duration:    2,
			Impact: map[string]EffectDoc{
				"revenue":      {Factor: 0.70},
				"market_share": {Delta: -0.10},
			},
		},
		{
			ID:          "tech_breakthrough",
			Name:        "Technology Breakthrough",
			Description: "New technology increases efficiency",
			Kind:        "random",
			Probability: 0.15,
			Duration:    3,
			Impact: map[string]EffectDoc{
				"efficiency": {Factor: 1.20},
				"costs":      {Factor: 0.90},
			},
		},
		{
			ID:           "regulatory_change",
			Name:         "Regulatory Change",
			Description:  "New regulations increase compliance costs",
			Kind:         "scheduled",
			TriggerRound: 5,
			Duration:     1,
			Impact: map[string]EffectDoc{
				"costs": {Factor: 1.15},
			},
		},
		{
			ID:          "economic_boom",
			Name:        "Economic Boom",
			Description: "Strong economic growth boosts demand",
			Kind:        "random",
			Probability: 0.20,
			Duration:    2,
			Impact: map[string]EffectDoc{
				"demand":  {Factor: 1.25},
				"revenue": {Factor: 1.15},
			},
		},
		{
			ID:          "price_war",
			Name:        "Price War",
			Description: "Aggressive discounting draws the whole field in",
			Kind:        "decision",
			Duration:    2,
			Trigger:     &TriggerDoc{PriceCutPct: 0.10},
			Impact: map[string]EffectDoc{
				"competition": {Delta: 0.15},
				"revenue":     {Factor: 0.95},
			},
		},
	}
}
