package projection

import (
	"testing"

	"github.com/theirongolddev/nestegg/internal/model"
)

func TestRateAt(t *testing.T) {
	e := testEngine(t)
	inst := model.Instrument{
		Principal: dec("1000"), Currency: "EGP", StartDate: mustDate(t, "2020-03-10"),
		TermMonths: 12, AnnualRatePercent: decPtr("9"),
	}

	tests := []struct {
		at       string
		want     string
		eligible bool
	}{
		{"2020-04-01", "9", false},
		{"2020-04-10", "9", true},
		{"2021-03-09", "9", true},
		{"2021-03-10", "15", true}, // first renewal lands in 2021
		{"2022-03-10", "10", true}, // second renewal, 2022 has no override and sits below the base year
	}
	for _, tt := range tests {
		got, ok := RateAt(e.Rates, inst, mustDate(t, tt.at))
		if ok != tt.eligible || !got.Equal(dec(tt.want)) {
			t.Errorf("RateAt(%s) = %s, %v; want %s, %v", tt.at, got, ok, tt.want, tt.eligible)
		}
	}
}

func TestNextRenewal(t *testing.T) {
	inst := model.Instrument{StartDate: mustDate(t, "2024-01-31"), TermMonths: 12}

	tests := []struct{ at, want string }{
		{"2023-06-01", "2025-01-31"},
		{"2024-05-01", "2025-01-31"},
		{"2025-01-31", "2026-01-31"},
		{"2025-02-01", "2026-01-31"},
	}
	for _, tt := range tests {
		if got := NextRenewal(inst, mustDate(t, tt.at)); got != mustDate(t, tt.want) {
			t.Errorf("NextRenewal(%s) = %s, want %s", tt.at, got, tt.want)
		}
	}

	if got := NextRenewal(model.Instrument{}, mustDate(t, "2025-01-01")); !got.IsZero() {
		t.Errorf("NextRenewal(zero) = %s, want zero", got)
	}
}

func TestMonthlyIncome(t *testing.T) {
	if got := MonthlyIncome(dec("12000"), dec("15")); !got.Equal(dec("150")) {
		t.Fatalf("MonthlyIncome = %s, want 150", got)
	}
}
