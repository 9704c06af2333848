package analytics

import (
	"math"
	"testing"

	"github.com/kestrelworks/venturesim/internal/engine"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSeriesOldestFirst(t *testing.T) {
	history := []engine.RoundResult{
		{Round: 1, KPIs: map[string]engine.KPISet{"acme": {Revenue: 100}}},
		{Round: 2, KPIs: map[string]engine.KPISet{"acme": {Revenue: 110}}},
		{Round: 3, KPIs: map[string]engine.KPISet{"acme": {Revenue: 120}}},
	}

	got := Series(history, "acme", MetricRevenue)
	want := []float64{100, 110, 120}
	if len(got) != len(want) {
		t.Fatalf("series length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if s := Series(history, "ghost", MetricRevenue); len(s) != 0 {
		t.Fatalf("missing company produced %v", s)
	}
	if s := Series(history, "acme", Metric("made_up")); s != nil {
		t.Fatalf("unknown metric produced %v", s)
	}
}

func TestSeriesSkipsMissingRounds(t *testing.T) {
	history := []engine.RoundResult{
		{Round: 1, KPIs: map[string]engine.KPISet{"acme": {Cash: 10}}},
		{Round: 2, KPIs: map[string]engine.KPISet{"other": {Cash: 99}}},
		{Round: 3, KPIs: map[string]engine.KPISet{"acme": {Cash: 30}}},
	}
	got := Series(history, "acme", MetricCash)
	if len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Fatalf("series = %v, want [10 30]", got)
	}
}

func TestSlope(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"rising", []float64{1, 2, 3, 4}, 0.4},   // slope 1 over mean 2.5
		{"falling", []float64{4, 3, 2, 1}, -0.4},
		{"flat", []float64{5, 5, 5}, 0},
		{"single point", []float64{7}, 0},
		{"empty", nil, 0},
		{"zero mean", []float64{-1, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slope(tc.values); !near(got, tc.want) {
				t.Fatalf("Slope(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}
