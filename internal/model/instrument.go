// Package model defines the value types shared by the projection engine,
// the snapshot builder and the record store.
package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Instrument is a single interest-bearing holding (a certificate or deposit).
type Instrument struct {
	ID         string
	Label      string
	Principal  decimal.Decimal
	Currency   string
	StartDate  civil.Date
	TermMonths int
	// AnnualRatePercent is the rate at inception. Nil means the schedule's
	// rate for the start year applies.
	AnnualRatePercent *decimal.Decimal
}

// Participates reports whether the instrument can take part in a projection:
// positive principal, a start date and a positive term.
func (i Instrument) Participates() bool {
	return i.Principal.IsPositive() && !i.StartDate.IsZero() && i.TermMonths > 0
}

// Account is a cash balance counted toward total savings but earning nothing.
type Account struct {
	ID       string
	Name     string
	Balance  decimal.Decimal
	Currency string
	AsOf     civil.Date
}

// Expense is a recurring monthly outflow used for runway and coverage.
type Expense struct {
	ID       string
	Label    string
	Monthly  decimal.Decimal
	Currency string
}

// Records is the full set of persisted inputs for one evaluation.
type Records struct {
	Instruments []Instrument
	Accounts    []Account
	Expenses    []Expense
}
