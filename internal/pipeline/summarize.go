package pipeline

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
)

// Summarize aggregates stored records into an overview in the plan
// currency. Savings count cash balances plus instrument principal; passive
// income counts instruments already earning on today.
func Summarize(rec model.Records, planCurrency string, rate *fx.Rate, today civil.Date, src rates.Source) model.Overview {
	ov := model.Overview{
		Currency:                 planCurrency,
		TotalSavings:             decimal.Zero,
		MonthlyPassiveIncome:     decimal.Zero,
		EstimatedMonthlyExpenses: decimal.Zero,
		AsOf:                     today,
	}

	for _, a := range rec.Accounts {
		ov.TotalSavings = ov.TotalSavings.Add(fx.ToPlanCurrency(a.Balance, a.Currency, planCurrency, rate))
	}

	for _, inst := range rec.Instruments {
		if !inst.Participates() {
			continue
		}
		principal := fx.ToPlanCurrency(inst.Principal, inst.Currency, planCurrency, rate)
		ov.TotalSavings = ov.TotalSavings.Add(principal)

		r, eligible := projection.RateAt(src, inst, today)
		if eligible {
			ov.MonthlyPassiveIncome = ov.MonthlyPassiveIncome.Add(projection.MonthlyIncome(principal, r))
		}
	}

	for _, e := range rec.Expenses {
		ov.EstimatedMonthlyExpenses = ov.EstimatedMonthlyExpenses.Add(fx.ToPlanCurrency(e.Monthly, e.Currency, planCurrency, rate))
	}

	return ov
}

// Unconverted lists the currencies in rec that the rate cannot bring into
// the plan currency, so callers can warn about passthrough totals.
func Unconverted(rec model.Records, planCurrency string, rate *fx.Rate) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(code string) {
		if seen[code] || fx.Converts(code, planCurrency, rate) {
			return
		}
		seen[code] = true
		out = append(out, code)
	}
	for _, a := range rec.Accounts {
		add(a.Currency)
	}
	for _, i := range rec.Instruments {
		add(i.Currency)
	}
	for _, e := range rec.Expenses {
		add(e.Currency)
	}
	return out
}
