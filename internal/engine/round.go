package engine

import (
	"fmt"
	"log/slog"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/events"
	"github.com/kestrelworks/venturesim/internal/market"
	"github.com/kestrelworks/venturesim/internal/policy"
)

// RunRound resolves one round with the player's bundle. The pipeline is
// strictly ordered: player decisions, rival decisions, event resolution,
// event impacts, market aggregation, settlement, KPIs. An invalid player
// bundle leaves the session untouched and the round does not advance.
func (s *Session) RunRound(playerBundle company.DecisionBundle) (RoundResult, error) {
	if s.Phase.Over() {
		return RoundResult{}, ErrSessionOver
	}
	round := s.Round + 1

	pre := cloneCompanies(s.Companies)
	companies := cloneCompanies(s.Companies)

	// 1. Player bundle, fail fast with no state change.
	prevPrice := econ.Float(companies[s.player].Price)
	applied, err := company.ApplyDecisions(companies[s.player], playerBundle, s.Config.Rules)
	if err != nil {
		return RoundResult{}, fmt.Errorf("round %d: %w", round, err)
	}
	companies[s.player] = applied
	sig := signalFrom(prevPrice, playerBundle)

	// 2. Rival bundles, clamped, in fixed order.
	outlook := s.outlook()
	for i := range companies {
		if i == s.player {
			continue
		}
		bundle := policy.Decide(companies[i], outlook, s.Profiles[companies[i].ID], s.rng)
		companies[i] = company.ApplyDecisionsClamped(companies[i], bundle, s.Config.Rules)
	}

	// Macro drift lands before resolution so event prerequisites see
	// this round's conditions.
	mkt := s.Market
	mkt.Indicators = s.drift.Advance(mkt.Indicators, round)
	mkt.Trend = s.drift.Trends(round)

	// 3. Events.
	view := events.View{
		Round:        round,
		DemandLevel:  mkt.DemandLevel,
		PriceIndex:   mkt.PriceIndex,
		Competition:  mkt.Competition,
		GDPGrowth:    mkt.Indicators.GDPGrowth,
		Inflation:    mkt.Indicators.Inflation,
		InterestRate: mkt.Indicators.InterestRate,
		PlayerCash:   econ.Float(companies[s.player].Cash),
		PlayerShare:  companies[s.player].MarketShare,
	}
	active, fired, impact := s.resolver.Resolve(s.Active, round, view, sig, s.rng)

	// 4. Event impacts on company metrics.
	for i := range companies {
		companies[i] = company.ApplyEventImpact(companies[i], impact)
	}

	// 5. Market aggregation and demand allocation.
	agg := market.Aggregate(mkt, companies, impact, s.Config.EpsilonShare)
	mkt = agg.State

	// 6. Settlement. Revenue and cost effects land here; realized demand
	// shares become the new market shares.
	terms := company.FinanceTerms{
		UtilizationCap:    s.Config.UtilizationCap,
		SalaryPerEmployee: s.Config.SalaryPerEmployee,
		FailureThreshold:  s.Config.FailureThreshold,
		AvgPrice:          mkt.AvgPrice,
		RevenueFactor:     impact.Effect(events.MetricRevenue).Factor,
		RevenueDelta:      impact.Effect(events.MetricRevenue).Delta,
		CostFactor:        impact.Effect(events.MetricCosts).Factor,
		CostDelta:         impact.Effect(events.MetricCosts).Delta,
	}
	for i := range companies {
		c := company.SettleFinancials(companies[i], agg.Allocated[companies[i].ID], terms)
		if share, ok := agg.Shares[c.ID]; ok {
			c.MarketShare = share
		} else {
			c.MarketShare = 0
		}
		companies[i] = c
	}

	// 7-8. Commit, then snapshot the result.
	s.Companies = companies
	s.Market = mkt
	s.Active = active
	s.Round = round
	s.advancePhase()

	result := RoundResult{
		Round:  round,
		Pre:    pre,
		Post:   cloneCompanies(companies),
		Market: mkt,
		Fired:  fired,
		Active: cloneActive(active),
		KPIs:   computeKPIs(companies),
		Phase:  s.Phase,
	}
	s.History = append(s.History, result)

	slog.Debug("round resolved",
		"session", s.ID,
		"round", round,
		"demand_level", mkt.DemandLevel,
		"events_fired", len(fired),
	)
	if s.Phase.Over() {
		slog.Info("game over", "session", s.ID, "round", round, "phase", s.Phase.String())
	}

	return result, nil
}

func (s *Session) advancePhase() {
	switch {
	case s.Companies[s.player].Standing == company.StandingBankrupt:
		s.Phase = PhasePlayerBankrupt
	case s.Round >= s.Config.MaxRounds:
		s.Phase = PhaseComplete
	}
}

// signalFrom summarizes the applied player bundle for decision triggers.
func signalFrom(prevPrice float64, b company.DecisionBundle) events.DecisionSignal {
	var sig events.DecisionSignal
	if b.Price != nil && prevPrice > econ.Epsilon {
		sig.PriceChangePct = (*b.Price - prevPrice) / prevPrice
	}
	if b.MarketingBudget != nil {
		sig.MarketingBudget = *b.MarketingBudget
	}
	if b.CapacityDelta != nil {
		sig.CapacityDelta = *b.CapacityDelta
	}
	return sig
}
