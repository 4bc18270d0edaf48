package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Overview holds aggregate figures as of a date.
type Overview struct {
	Currency             string
	TotalSavings         decimal.Decimal
	MonthlyPassiveIncome decimal.Decimal
	// EstimatedMonthlyExpenses is zero when unknown.
	EstimatedMonthlyExpenses decimal.Decimal
	AsOf                     civil.Date
}

// LevelProgress is the 0-1 progress toward one tier.
type LevelProgress struct {
	LevelID string
	Savings decimal.Decimal
	Revenue decimal.Decimal
	Overall decimal.Decimal
}

// Snapshot is the milestone evaluation for a point in time.
type Snapshot struct {
	Currency                 string
	TotalSavings             decimal.Decimal
	MonthlyPassiveIncome     decimal.Decimal
	EstimatedMonthlyExpenses decimal.Decimal
	MonthsOfExpensesSaved    *decimal.Decimal
	CoveragePercent          *decimal.Decimal
	CurrentLevelID           string
	CurrentAchieved          bool
	NextLevelID              string
	Ladder                   Ladder
	Progress                 []LevelProgress
}

// ProgressFor returns the progress entry for a tier.
func (s Snapshot) ProgressFor(id string) (LevelProgress, bool) {
	for _, p := range s.Progress {
		if p.LevelID == id {
			return p, true
		}
	}
	return LevelProgress{}, false
}

// IncomeShare is one instrument's contribution to passive income.
type IncomeShare struct {
	InstrumentID  string
	Label         string
	Principal     decimal.Decimal
	Rate          decimal.Decimal
	MonthlyIncome decimal.Decimal
	SharePercent  decimal.Decimal
	Eligible      bool
	NextRenewal   civil.Date
}
