// Package fx converts amounts into the plan currency and fetches live
// exchange rates.
package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	// ErrRateLimited indicates the rate provider throttled the request.
	ErrRateLimited = errors.New("fx: rate limited")
	// ErrNotFound indicates the provider has no quote for the pair.
	ErrNotFound = errors.New("fx: rate not found")
	// ErrInvalidCurrency indicates a code that is not ISO 4217.
	ErrInvalidCurrency = errors.New("fx: invalid currency")
)

// Rate quotes one currency pair: 1 Base = Value Quote.
type Rate struct {
	Base   string          `json:"base"`
	Quote  string          `json:"quote"`
	Value  decimal.Decimal `json:"value"`
	AsOf   time.Time       `json:"as_of"`
	Source string          `json:"source,omitempty"`
}

// Valid reports whether the rate can be applied.
func (r *Rate) Valid() bool {
	return r != nil && r.Base != "" && r.Quote != "" && r.Value.IsPositive()
}

// Inverse returns the rate for the opposite direction.
func (r Rate) Inverse() Rate {
	inv := r
	inv.Base, inv.Quote = r.Quote, r.Base
	if r.Value.IsPositive() {
		inv.Value = decimal.NewFromInt(1).DivRound(r.Value, 12)
	}
	return inv
}

func (r Rate) String() string {
	return fmt.Sprintf("1 %s = %s %s", r.Base, r.Value.String(), r.Quote)
}

// Provider fetches a live quote.
type Provider interface {
	Rate(ctx context.Context, base, quote string) (Rate, error)
}

// NormalizeCode upper-cases a currency code and checks it against ISO 4217.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}
