// Package pipeline turns stored records into snapshots, income breakdowns
// and per-milestone estimates.
package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// BuildSnapshot places an overview on the ladder.
//
// The current tier is the highest-order tier whose thresholds both hold. If
// none qualifies the first tier is current but not achieved. Runway and
// coverage are left nil unless expenses are positive.
func BuildSnapshot(ov model.Overview, ladder model.Ladder, planCurrency string, rate *fx.Rate) model.Snapshot {
	from := ov.Currency
	if from == "" {
		from = planCurrency
	}
	savings := fx.ToPlanCurrency(ov.TotalSavings, from, planCurrency, rate)
	income := fx.ToPlanCurrency(ov.MonthlyPassiveIncome, from, planCurrency, rate)
	expenses := fx.ToPlanCurrency(ov.EstimatedMonthlyExpenses, from, planCurrency, rate)

	sorted := ladder.Sorted()
	snap := model.Snapshot{
		Currency:                 planCurrency,
		TotalSavings:             savings,
		MonthlyPassiveIncome:     income,
		EstimatedMonthlyExpenses: expenses,
		Ladder:                   sorted,
	}

	if expenses.IsPositive() {
		runway := savings.Div(expenses)
		coverage := income.Div(expenses).Mul(hundred)
		snap.MonthsOfExpensesSaved = &runway
		snap.CoveragePercent = &coverage
	}

	if len(sorted) == 0 {
		return snap
	}

	current := -1
	for i, m := range sorted {
		if m.Satisfied(savings, income) {
			current = i
		}
	}
	if current >= 0 {
		snap.CurrentAchieved = true
	} else {
		current = 0
	}
	snap.CurrentLevelID = sorted[current].ID
	if current+1 < len(sorted) {
		snap.NextLevelID = sorted[current+1].ID
	}

	snap.Progress = make([]model.LevelProgress, 0, len(sorted))
	for _, m := range sorted {
		s := subProgress(savings, m.MinSavings)
		r := subProgress(income, m.MinMonthlyRevenue)
		snap.Progress = append(snap.Progress, model.LevelProgress{
			LevelID: m.ID,
			Savings: s,
			Revenue: r,
			Overall: decimal.Min(s, r),
		})
	}

	return snap
}

// subProgress is min(1, current/threshold), or 1 without a threshold.
func subProgress(current decimal.Decimal, threshold *decimal.Decimal) decimal.Decimal {
	if threshold == nil || !threshold.IsPositive() {
		return one
	}
	if !current.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(one, current.Div(*threshold))
}
