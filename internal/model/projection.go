package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// MonthRow holds the simulated figures for one month.
type MonthRow struct {
	Index           int // months since the reference date's month
	Label           string
	Date            civil.Date
	Age             int
	StartBalance    decimal.Decimal
	TotalDeposited  decimal.Decimal
	Deposited       decimal.Decimal // reinvested this month
	Revenue         decimal.Decimal
	EndBalance      decimal.Decimal
	EffectiveRate   decimal.Decimal
	UninvestedCarry decimal.Decimal
}

// YearRow aggregates the months of one calendar year.
type YearRow struct {
	Year              int
	Age               int
	StartBalance      decimal.Decimal
	TotalDeposited    decimal.Decimal
	DepositedThisYear decimal.Decimal
	Revenue           decimal.Decimal
	EndBalance        decimal.Decimal
	EffectiveRate     decimal.Decimal
	UninvestedCarry   decimal.Decimal
	Months            []MonthRow
}

// LastMonth returns the final month row of a projection.
func LastMonth(rows []YearRow) (MonthRow, bool) {
	if len(rows) == 0 {
		return MonthRow{}, false
	}
	months := rows[len(rows)-1].Months
	if len(months) == 0 {
		return MonthRow{}, false
	}
	return months[len(months)-1], true
}

// Estimate is the achievement estimate for one milestone.
type Estimate struct {
	LevelID    string
	Reached    bool
	Year       int
	Age        int
	MonthsAway int
	Rows       []YearRow
}
