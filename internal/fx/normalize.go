package fx

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ToPlanCurrency expresses amount, held in from, in the to currency.
//
// Matching currencies return the amount unchanged. A rate quoting from→to is
// multiplied in; a rate quoting to→from is divided out. With no usable rate
// for the pair the amount passes through unconverted.
func ToPlanCurrency(amount decimal.Decimal, from, to string, rate *Rate) decimal.Decimal {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return amount
	}
	if !rate.Valid() {
		return amount
	}

	base := strings.ToUpper(rate.Base)
	quote := strings.ToUpper(rate.Quote)
	switch {
	case base == from && quote == to:
		return amount.Mul(rate.Value)
	case base == to && quote == from:
		return amount.Div(rate.Value)
	}
	return amount
}

// Converts reports whether ToPlanCurrency would apply the rate for the pair,
// rather than pass the amount through.
func Converts(from, to string, rate *Rate) bool {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return true
	}
	if !rate.Valid() {
		return false
	}
	base := strings.ToUpper(rate.Base)
	quote := strings.ToUpper(rate.Quote)
	return (base == from && quote == to) || (base == to && quote == from)
}
