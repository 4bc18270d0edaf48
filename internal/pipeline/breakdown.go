package pipeline

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
)

// Breakdown splits current passive income by instrument, sorted by monthly
// income descending. Instruments not yet earning appear with zero income.
func Breakdown(instruments []model.Instrument, planCurrency string, rate *fx.Rate, today civil.Date, src rates.Source) []model.IncomeShare {
	var shares []model.IncomeShare
	total := decimal.Zero

	for _, inst := range instruments {
		if !inst.Participates() {
			continue
		}
		principal := fx.ToPlanCurrency(inst.Principal, inst.Currency, planCurrency, rate)
		r, eligible := projection.RateAt(src, inst, today)
		income := decimal.Zero
		if eligible {
			income = projection.MonthlyIncome(principal, r)
		}
		total = total.Add(income)

		label := inst.Label
		if label == "" {
			label = inst.ID
		}
		shares = append(shares, model.IncomeShare{
			InstrumentID:  inst.ID,
			Label:         label,
			Principal:     principal,
			Rate:          r,
			MonthlyIncome: income,
			Eligible:      eligible,
			NextRenewal:   projection.NextRenewal(inst, today),
		})
	}

	for i := range shares {
		if total.IsPositive() {
			shares[i].SharePercent = shares[i].MonthlyIncome.Div(total).Mul(hundred)
		} else {
			shares[i].SharePercent = decimal.Zero
		}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		if !shares[i].MonthlyIncome.Equal(shares[j].MonthlyIncome) {
			return shares[i].MonthlyIncome.GreaterThan(shares[j].MonthlyIncome)
		}
		return shares[i].Principal.GreaterThan(shares[j].Principal)
	})

	return shares
}
