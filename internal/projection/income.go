package projection

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/rates"
)

// RateAt returns the rate an instrument earns on d and whether it is
// eligible to earn at all (one full month since its start). The instrument
// is assumed to participate.
func RateAt(src rates.Source, inst model.Instrument, d civil.Date) (decimal.Decimal, bool) {
	p := position{start: inst.StartDate, term: inst.TermMonths}
	if inst.AnnualRatePercent != nil {
		p.rate = *inst.AnnualRatePercent
	} else {
		p.rate = src.RateForYear(inst.StartDate.Year)
	}
	elapsed := fullMonthsBetween(p.start, d)
	if elapsed < 1 {
		return p.rate, false
	}
	return p.rateAt(src, elapsed), true
}

// MonthlyIncome is principal × rate / 12 / 100.
func MonthlyIncome(principal, ratePercent decimal.Decimal) decimal.Decimal {
	return principal.Mul(ratePercent).Div(monthsPerYearPct)
}

// NextRenewal returns the first term boundary strictly after d.
func NextRenewal(inst model.Instrument, d civil.Date) civil.Date {
	if inst.TermMonths <= 0 || inst.StartDate.IsZero() {
		return civil.Date{}
	}
	elapsed := fullMonthsBetween(inst.StartDate, d)
	if elapsed < 0 {
		elapsed = 0
	}
	next := (elapsed/inst.TermMonths + 1) * inst.TermMonths
	return addMonths(inst.StartDate, next)
}
