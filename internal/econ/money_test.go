package econ

import (
	"testing"
)

func TestMoneyRoundsToCents(t *testing.T) {
	cases := []struct {
		name string
		got  Money
		want string
	}{
		{"new from float", NewMoney(102.005), "102.01"},
		{"scale", Scale(NewMoney(100), 1.0/3.0), "33.33"},
		{"mul units", MulUnits(NewMoney(102), 333.333), "33999.97"},
		{"add", Add(NewMoney(0.1), NewMoney(0.2)), "0.3"},
		{"sub negative", Sub(NewMoney(10), NewMoney(25.555)), "-15.56"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got.String() != tc.want {
				t.Errorf("got %s, want %s", tc.got.String(), tc.want)
			}
			if tc.got.Exponent() < -2 {
				t.Errorf("exponent = %d, want >= -2 (two decimal places)", tc.got.Exponent())
			}
		})
	}
}

func TestMoneyNoDriftAcrossRepeatedOps(t *testing.T) {
	// Repeatedly applying a ratio must stay on cent boundaries.
	v := NewMoney(1000)
	for i := 0; i < 500; i++ {
		v = Scale(v, 1.0037)
	}
	if v.Exponent() < -2 {
		t.Errorf("after 500 scalings exponent = %d, want >= -2", v.Exponent())
	}
	if !v.IsPositive() {
		t.Errorf("value collapsed to %s", v)
	}
}
