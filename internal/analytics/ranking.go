package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kestrelworks/venturesim/internal/engine"
)

// Weights blend the four criterion scores into the composite. They must
// sum to 1.
type Weights struct {
	Financial   float64 `json:"financial"`
	Operational float64 `json:"operational"`
	Market      float64 `json:"market"`
	Customer    float64 `json:"customer"`
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{Financial: 0.3, Operational: 0.25, Market: 0.25, Customer: 0.2}
}

// Validate rejects weights that do not sum to 1.
func (w Weights) Validate() error {
	total := w.Financial + w.Operational + w.Market + w.Customer
	if math.Abs(total-1) > 1e-3 {
		return fmt.Errorf("ranking weights sum to %.3f, must be 1", total)
	}
	return nil
}

// Ranking is one company's composite standing for a round. Criterion
// scores and the composite are all on a 0-100 scale.
type Ranking struct {
	CompanyID   string  `json:"company_id"`
	Name        string  `json:"name"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	Financial   float64 `json:"financial"`
	Operational float64 `json:"operational"`
	Market      float64 `json:"market"`
	Customer    float64 `json:"customer"`
	Percentile  float64 `json:"percentile"`
}

// Rank scores one round's companies and orders them best first. Equal
// scores break by company ID so the order is stable across runs.
func Rank(result engine.RoundResult, w Weights) ([]Ranking, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	out := make([]Ranking, 0, len(result.Post))
	for _, c := range result.Post {
		k := result.KPIs[c.ID]
		r := Ranking{
			CompanyID:   c.ID,
			Name:        c.Name,
			Financial:   financialScore(k),
			Operational: operationalScore(k),
			Market:      marketScore(k),
			Customer:    customerScore(k),
		}
		r.Score = r.Financial*w.Financial + r.Operational*w.Operational +
			r.Market*w.Market + r.Customer*w.Customer
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	n := len(out)
	for i := range out {
		out[i].Rank = i + 1
		out[i].Percentile = float64(n-i) / float64(n) * 100
	}
	return out, nil
}

// Entry is one leaderboard row: the latest ranking plus movement against
// the round before.
type Entry struct {
	Ranking
	Moved int    `json:"moved"` // Positions gained since last round, negative = lost
	Trend string `json:"trend"` // "improving", "declining", "stable"
}

// ErrNoHistory is returned when a leaderboard or report is requested
// before any round has resolved.
var ErrNoHistory = errors.New("no rounds resolved")

// Leaderboard ranks the latest round and annotates movement since the
// previous one. A single-round history reports every trend as stable.
func Leaderboard(history []engine.RoundResult, w Weights) ([]Entry, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	current, err := Rank(history[len(history)-1], w)
	if err != nil {
		return nil, err
	}

	prevRank := map[string]int{}
	if len(history) > 1 {
		previous, err := Rank(history[len(history)-2], w)
		if err != nil {
			return nil, err
		}
		for _, r := range previous {
			prevRank[r.CompanyID] = r.Rank
		}
	}

	out := make([]Entry, 0, len(current))
	for _, r := range current {
		e := Entry{Ranking: r, Trend: "stable"}
		if prev, ok := prevRank[r.CompanyID]; ok {
			e.Moved = prev - r.Rank
			switch {
			case e.Moved > 1:
				e.Trend = "improving"
			case e.Moved < -1:
				e.Trend = "declining"
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// Criterion scores normalize the available KPIs onto 0-100. Ratios scale
// by 100; brand value is already on that scale.

func financialScore(k engine.KPISet) float64 {
	return 0.5*clampScore(k.ProfitMargin*100) + 0.5*clampScore(k.ROI*100)
}

func operationalScore(k engine.KPISet) float64 {
	return 0.55*clampScore(k.Utilization*100) + 0.45*clampScore(k.Efficiency*100)
}

func marketScore(k engine.KPISet) float64 {
	return 0.7*clampScore(k.MarketShare*100) + 0.3*clampScore(k.BrandValue)
}

func customerScore(k engine.KPISet) float64 {
	return clampScore(k.Satisfaction * 100)
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
