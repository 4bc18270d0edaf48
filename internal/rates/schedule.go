// Package rates provides the year-indexed annual interest rate schedule.
package rates

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Source returns the annual rate, in percent, for a calendar year.
type Source interface {
	RateForYear(year int) decimal.Decimal
}

// Override pins the rate for one year.
type Override struct {
	Year int
	Rate decimal.Decimal
}

// Schedule computes rates from a base year and a fixed annual step, floored
// at a minimum, with per-year overrides taking precedence.
type Schedule struct {
	BaseYear   int
	BaseRate   decimal.Decimal
	AnnualStep decimal.Decimal
	Floor      decimal.Decimal

	mu        sync.RWMutex
	overrides map[int]decimal.Decimal
}

// New returns a schedule with no overrides.
func New(baseYear int, baseRate, annualStep, floor decimal.Decimal) *Schedule {
	return &Schedule{
		BaseYear:   baseYear,
		BaseRate:   baseRate,
		AnnualStep: annualStep,
		Floor:      floor,
		overrides:  make(map[int]decimal.Decimal),
	}
}

// RateForYear returns the rate for year. Years before the base year have no
// extrapolated value and resolve to the floor unless overridden. The result
// is never below the floor.
func (s *Schedule) RateForYear(year int) decimal.Decimal {
	s.mu.RLock()
	r, ok := s.overrides[year]
	s.mu.RUnlock()
	if ok {
		return decimal.Max(r, s.Floor)
	}

	if year < s.BaseYear {
		return s.Floor
	}

	r = s.BaseRate.Add(s.AnnualStep.Mul(decimal.NewFromInt(int64(year - s.BaseYear))))
	return decimal.Max(r, s.Floor)
}

// SetOverride pins the rate for year. Changes are in-memory until the
// caller saves the config.
func (s *Schedule) SetOverride(year int, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides == nil {
		s.overrides = make(map[int]decimal.Decimal)
	}
	s.overrides[year] = rate
}

// ClearOverride removes the override for year, reporting whether one existed.
func (s *Schedule) ClearOverride(year int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.overrides[year]
	delete(s.overrides, year)
	return ok
}

// Overrides returns the override table sorted by year.
func (s *Schedule) Overrides() []Override {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Override, 0, len(s.overrides))
	for y, r := range s.overrides {
		out = append(out, Override{Year: y, Rate: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Table returns the rate for every year in [from, to], inclusive.
func (s *Schedule) Table(from, to int) []Override {
	if to < from {
		return nil
	}
	out := make([]Override, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, Override{Year: y, Rate: s.RateForYear(y)})
	}
	return out
}

// IsOverridden reports whether year has a pinned rate.
func (s *Schedule) IsOverridden(year int) bool {
	_, ok := s.override(year)
	return ok
}

func (s *Schedule) override(year int) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.overrides[year]
	return r, ok
}
