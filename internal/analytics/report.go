package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kestrelworks/venturesim/internal/engine"
)

// RoundReport renders one resolved round as console text.
func RoundReport(result engine.RoundResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ROUND %d\n", result.Round)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 24))

	m := result.Market
	fmt.Fprintf(&b, "Demand %s units at avg price $%s (index %.2f), competition %.2f\n",
		humanize.Commaf(math.Round(m.DemandLevel)), humanize.CommafWithDigits(m.AvgPrice, 2),
		m.PriceIndex, m.Competition)
	ind := m.Indicators
	fmt.Fprintf(&b, "GDP %+.1f%%, inflation %.1f%%, interest %.1f%%\n",
		ind.GDPGrowth*100, ind.Inflation*100, ind.InterestRate*100)

	if len(result.Fired) > 0 {
		b.WriteString("Events fired:\n")
		for _, f := range result.Fired {
			fmt.Fprintf(&b, "- %s (%d rounds): %s\n", f.Name, f.Duration, f.Description)
		}
	}
	if len(result.Active) > 0 {
		b.WriteString("In effect:\n")
		for _, a := range result.Active {
			fmt.Fprintf(&b, "- %s (%d more)\n", a.Name, a.Remaining)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-22s %14s %14s %14s %7s  %s\n",
		"COMPANY", "REVENUE", "PROFIT", "CASH", "SHARE", "STANDING")
	for _, c := range result.Post {
		k := result.KPIs[c.ID]
		fmt.Fprintf(&b, "%-22s %14s %14s %14s %6.1f%%  %s\n",
			c.Name, money(k.Revenue), money(k.Profit), money(k.Cash),
			k.MarketShare*100, c.Standing)
	}
	return b.String()
}

// FinalReport renders the game outcome, the closing leaderboard, and the
// player's per-round KPI trends over the whole run.
func FinalReport(history []engine.RoundResult, w Weights) (string, error) {
	board, err := Leaderboard(history, w)
	if err != nil {
		return "", err
	}
	last := history[len(history)-1]

	var b strings.Builder
	b.WriteString("FINAL STANDINGS\n")
	b.WriteString("===============\n")
	if last.Phase == engine.PhasePlayerBankrupt {
		fmt.Fprintf(&b, "Player bankrupt in round %d.\n\n", last.Round)
	} else {
		fmt.Fprintf(&b, "%d rounds played.\n\n", last.Round)
	}

	fmt.Fprintf(&b, "%-5s %-22s %7s %6s %6s %6s %6s  %s\n",
		"RANK", "COMPANY", "SCORE", "FIN", "OPS", "MKT", "CST", "TREND")
	for _, e := range board {
		fmt.Fprintf(&b, "%-5s %-22s %7.1f %6.1f %6.1f %6.1f %6.1f  %s\n",
			humanize.Ordinal(e.Rank), e.Name, e.Score,
			e.Financial, e.Operational, e.Market, e.Customer, e.Trend)
	}

	playerID := ""
	for _, c := range last.Post {
		if c.IsPlayer {
			playerID = c.ID
			break
		}
	}
	if playerID != "" && len(history) > 1 {
		b.WriteString("\nPLAYER TREND PER ROUND\n")
		for _, m := range []Metric{MetricRevenue, MetricProfit, MetricCash, MetricShare, MetricSatisfaction} {
			slope := Slope(Series(history, playerID, m))
			fmt.Fprintf(&b, "%-22s %+.1f%%\n", string(m), slope*100)
		}
	}
	return b.String(), nil
}

func money(v float64) string {
	if v < 0 {
		return "-$" + humanize.CommafWithDigits(-v, 2)
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}
