package projection

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/rates"
)

var monthsPerYearPct = decimal.NewFromInt(1200)

// position is an instrument normalized to the plan currency.
type position struct {
	principal decimal.Decimal
	start     civil.Date
	term      int
	rate      decimal.Decimal // inception rate

	// weight is principal × the rate in effect until elapsed reaches
	// weightUntil. Zero weightUntil means not yet computed.
	weight      decimal.Decimal
	weightUntil int
}

// positions filters and normalizes instruments, returning the total
// principal and the principal-weighted inception rate.
func positions(src rates.Source, instruments []model.Instrument, planCurrency string, rate *fx.Rate) ([]position, decimal.Decimal, decimal.Decimal) {
	out := make([]position, 0, len(instruments))
	total := decimal.Zero
	weighted := decimal.Zero
	for _, inst := range instruments {
		if !inst.Participates() {
			continue
		}
		p := position{
			principal: fx.ToPlanCurrency(inst.Principal, inst.Currency, planCurrency, rate),
			start:     inst.StartDate,
			term:      inst.TermMonths,
		}
		if !p.principal.IsPositive() {
			continue
		}
		if inst.AnnualRatePercent != nil {
			p.rate = *inst.AnnualRatePercent
		} else {
			p.rate = src.RateForYear(inst.StartDate.Year)
		}
		out = append(out, p)
		total = total.Add(p.principal)
		weighted = weighted.Add(p.principal.Mul(p.rate))
	}
	if !total.IsPositive() {
		return nil, decimal.Zero, decimal.Zero
	}
	return out, total, weighted.Div(total)
}

// rateAt returns the position's rate after elapsed whole months since its
// start. Once a full term has passed the rate is re-queried for the year of
// the latest renewal boundary.
func (p position) rateAt(src rates.Source, elapsed int) decimal.Decimal {
	if elapsed < p.term {
		return p.rate
	}
	renewals := elapsed / p.term
	boundary := addMonths(p.start, renewals*p.term)
	return src.RateForYear(boundary.Year)
}

// weightAt returns principal × rate for elapsed months, re-querying the
// rate only when a renewal boundary has been crossed. elapsed must not
// decrease between calls.
func (p *position) weightAt(src rates.Source, elapsed int) decimal.Decimal {
	if p.weightUntil == 0 || elapsed >= p.weightUntil {
		p.weight = p.principal.Mul(p.rateAt(src, elapsed))
		p.weightUntil = (elapsed/p.term + 1) * p.term
	}
	return p.weight
}

// simulation carries the mutable state of one projection run.
type simulation struct {
	eng       *Engine
	today     civil.Date
	positions []position
	baseline  decimal.Decimal
	carry     decimal.Decimal
	total     decimal.Decimal // sum of position principals
}

func (s *simulation) invested() decimal.Decimal {
	return s.total
}

// opening describes month zero before any accrual.
func (s *simulation) opening() model.MonthRow {
	bal := s.invested().Add(s.carry)
	return model.MonthRow{
		Index:           0,
		Label:           monthLabel(s.today),
		Date:            s.today,
		Age:             ageAt(s.eng.BirthDate, s.today),
		StartBalance:    bal,
		TotalDeposited:  s.invested(),
		Deposited:       decimal.Zero,
		Revenue:         decimal.Zero,
		EndBalance:      bal,
		EffectiveRate:   s.baseline,
		UninvestedCarry: s.carry,
	}
}

// step simulates month m and returns its row.
func (s *simulation) step(m int) model.MonthRow {
	date := addMonths(s.today, m)
	start := s.invested().Add(s.carry)

	weighted := decimal.Zero
	eligible := decimal.Zero
	for i := range s.positions {
		p := &s.positions[i]
		elapsed := fullMonthsBetween(p.start, date)
		if elapsed < 1 {
			continue
		}
		weighted = weighted.Add(p.weightAt(s.eng.Rates, elapsed))
		eligible = eligible.Add(p.principal)
	}
	revenue := weighted.Div(monthsPerYearPct)

	effective := s.baseline
	if eligible.IsPositive() {
		effective = weighted.Div(eligible)
	}

	s.carry = s.carry.Add(revenue)
	deposited := decimal.Zero
	if step := s.eng.ReinvestStep; step.IsPositive() && s.carry.GreaterThanOrEqual(step) {
		chunks, rem := s.carry.QuoRem(step, 0)
		deposited = chunks.Mul(step)
		s.positions = append(s.positions, position{
			principal: deposited,
			start:     date,
			term:      s.eng.ReinvestTermMonths,
			rate:      s.eng.Rates.RateForYear(date.Year),
		})
		s.total = s.total.Add(deposited)
		s.carry = rem
	}

	invested := s.invested()
	return model.MonthRow{
		Index:           m,
		Label:           monthLabel(date),
		Date:            date,
		Age:             ageAt(s.eng.BirthDate, date),
		StartBalance:    start,
		TotalDeposited:  invested,
		Deposited:       deposited,
		Revenue:         revenue,
		EndBalance:      invested.Add(s.carry),
		EffectiveRate:   effective,
		UninvestedCarry: s.carry,
	}
}
