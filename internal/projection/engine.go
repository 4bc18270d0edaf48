// Package projection simulates monthly accrual and reinvestment across a
// set of instruments until a milestone's thresholds are met.
package projection

import (
	"iter"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/rates"
)

const (
	// MaxHorizonMonths bounds every run.
	MaxHorizonMonths = 1200
	// MaxHorizonYears is the most calendar-year rows a run can span; 1200
	// months starting after January touch 101 years.
	MaxHorizonYears = 101
	// DefaultReinvestTermMonths is the term given to reinvested chunks.
	DefaultReinvestTermMonths = 36
)

// DefaultReinvestStep is the chunk size revenue is reinvested in.
var DefaultReinvestStep = decimal.NewFromInt(1000)

// Engine runs projections. It holds no state between calls and is safe for
// concurrent use as long as Rates is.
type Engine struct {
	Rates              rates.Source
	BirthDate          civil.Date
	ReinvestStep       decimal.Decimal
	ReinvestTermMonths int
	HorizonMonths      int
}

// New returns an engine with the default reinvestment settings.
func New(src rates.Source, birth civil.Date) *Engine {
	return &Engine{
		Rates:              src,
		BirthDate:          birth,
		ReinvestStep:       DefaultReinvestStep,
		ReinvestTermMonths: DefaultReinvestTermMonths,
		HorizonMonths:      MaxHorizonMonths,
	}
}

func (e *Engine) horizon() int {
	if e.HorizonMonths <= 0 || e.HorizonMonths > MaxHorizonMonths {
		return MaxHorizonMonths
	}
	return e.HorizonMonths
}

func (e *Engine) start(instruments []model.Instrument, planCurrency string, rate *fx.Rate, today civil.Date) (*simulation, bool) {
	cfg := *e
	if cfg.ReinvestTermMonths <= 0 {
		cfg.ReinvestTermMonths = DefaultReinvestTermMonths
	}
	ps, total, baseline := positions(cfg.Rates, instruments, planCurrency, rate)
	if !total.IsPositive() {
		return nil, false
	}
	return &simulation{
		eng:       &cfg,
		today:     today,
		positions: ps,
		baseline:  baseline,
		carry:     decimal.Zero,
		total:     total,
	}, true
}

// Months yields one row per simulated month, starting with the month of
// today, until the horizon is exhausted or the consumer stops. Nothing is
// yielded when no instrument participates.
func (e *Engine) Months(instruments []model.Instrument, planCurrency string, rate *fx.Rate, today civil.Date) iter.Seq[model.MonthRow] {
	return func(yield func(model.MonthRow) bool) {
		sim, ok := e.start(instruments, planCurrency, rate, today)
		if !ok {
			return
		}
		for m := range e.horizon() {
			if !yield(sim.step(m)) {
				return
			}
		}
	}
}

// Project simulates until milestone's thresholds hold on a month's end
// balance and revenue, or the horizon runs out. It returns nil when no
// instrument participates, and a single month-zero row when the milestone
// has no thresholds. Callers tell reached from not reached with Reached.
func (e *Engine) Project(milestone model.Milestone, instruments []model.Instrument, planCurrency string, rate *fx.Rate, today civil.Date) []model.YearRow {
	if milestone.Vacuous() {
		sim, ok := e.start(instruments, planCurrency, rate, today)
		if !ok {
			return nil
		}
		var b yearBuilder
		b.add(sim.opening())
		return b.finish()
	}

	var b yearBuilder
	for row := range e.Months(instruments, planCurrency, rate, today) {
		b.add(row)
		if milestone.Satisfied(row.EndBalance, row.Revenue) {
			break
		}
	}
	return b.finish()
}

// Reached reports whether the final month of rows meets milestone.
func Reached(milestone model.Milestone, rows []model.YearRow) bool {
	last, ok := model.LastMonth(rows)
	if !ok {
		return false
	}
	return milestone.Satisfied(last.EndBalance, last.Revenue)
}

// Estimate summarizes a projection as an achievement year and age.
func Estimate(milestone model.Milestone, rows []model.YearRow) model.Estimate {
	est := model.Estimate{LevelID: milestone.ID, Rows: rows}
	last, ok := model.LastMonth(rows)
	if !ok {
		return est
	}
	est.Reached = milestone.Satisfied(last.EndBalance, last.Revenue)
	est.Year = last.Date.Year
	est.Age = last.Age
	est.MonthsAway = last.Index
	return est
}

// yearBuilder folds month rows into calendar-year rows.
type yearBuilder struct {
	rows []model.YearRow
	cur  *model.YearRow
}

func (b *yearBuilder) add(m model.MonthRow) {
	if b.cur == nil || b.cur.Year != m.Date.Year {
		b.flush()
		b.cur = &model.YearRow{
			Year:              m.Date.Year,
			StartBalance:      m.StartBalance,
			DepositedThisYear: decimal.Zero,
			Revenue:           decimal.Zero,
		}
	}
	y := b.cur
	y.Age = m.Age
	y.TotalDeposited = m.TotalDeposited
	y.DepositedThisYear = y.DepositedThisYear.Add(m.Deposited)
	y.Revenue = y.Revenue.Add(m.Revenue)
	y.EndBalance = m.EndBalance
	y.EffectiveRate = m.EffectiveRate
	y.UninvestedCarry = m.UninvestedCarry
	y.Months = append(y.Months, m)
}

func (b *yearBuilder) flush() {
	if b.cur != nil {
		b.rows = append(b.rows, *b.cur)
		b.cur = nil
	}
}

func (b *yearBuilder) finish() []model.YearRow {
	b.flush()
	return b.rows
}
