package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidLadder is returned when a ladder fails validation.
	ErrInvalidLadder = errors.New("invalid milestone ladder")
	// ErrUnknownLevel indicates a milestone id that is not on the ladder.
	ErrUnknownLevel = errors.New("unknown milestone level")
)

// Milestone is one plan tier. A nil threshold means that dimension is
// always satisfied. Thresholds are in the plan currency.
type Milestone struct {
	ID                string
	Order             int
	Label             string
	Narrative         string
	MinSavings        *decimal.Decimal
	MinMonthlyRevenue *decimal.Decimal
	Attributes        map[string]string
}

// Vacuous reports whether neither threshold is set.
func (m Milestone) Vacuous() bool {
	return m.MinSavings == nil && m.MinMonthlyRevenue == nil
}

// Satisfied reports whether the given savings and monthly revenue meet both
// thresholds.
func (m Milestone) Satisfied(savings, revenue decimal.Decimal) bool {
	if m.MinSavings != nil && savings.LessThan(*m.MinSavings) {
		return false
	}
	if m.MinMonthlyRevenue != nil && revenue.LessThan(*m.MinMonthlyRevenue) {
		return false
	}
	return true
}

// Ladder is the ordered list of milestones.
type Ladder []Milestone

// Sorted returns a copy of the ladder ordered by Order.
func (l Ladder) Sorted() Ladder {
	out := make(Ladder, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Validate checks that the ladder is non-empty, ids are unique and orders
// run 1..N without gaps once sorted.
func (l Ladder) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidLadder)
	}
	seen := make(map[string]bool, len(l))
	for i, m := range l.Sorted() {
		if m.ID == "" {
			return fmt.Errorf("%w: tier %d has no id", ErrInvalidLadder, m.Order)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidLadder, m.ID)
		}
		seen[m.ID] = true
		if m.Order != i+1 {
			return fmt.Errorf("%w: tier %q has order %d, want %d", ErrInvalidLadder, m.ID, m.Order, i+1)
		}
	}
	return nil
}

// Find returns the milestone with the given id.
func (l Ladder) Find(id string) (Milestone, bool) {
	for _, m := range l {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}
