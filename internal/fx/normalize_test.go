package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func usdEgp(v string) *Rate {
	return &Rate{Base: "USD", Quote: "EGP", Value: decimal.RequireFromString(v)}
}

func TestToPlanCurrency(t *testing.T) {
	amount := decimal.RequireFromString("100")

	tests := []struct {
		name     string
		from, to string
		rate     *Rate
		want     string
	}{
		{"identity", "EGP", "EGP", usdEgp("50"), "100"},
		{"identity ignores case", "egp", "EGP", nil, "100"},
		{"direct pair multiplies", "USD", "EGP", usdEgp("50"), "5000"},
		{"inverse pair divides", "EGP", "USD", usdEgp("50"), "2"},
		{"nil rate passes through", "USD", "EGP", nil, "100"},
		{"unrelated pair passes through", "EUR", "EGP", usdEgp("50"), "100"},
		{"zero rate passes through", "USD", "EGP", usdEgp("0"), "100"},
		{"negative rate passes through", "USD", "EGP", usdEgp("-3"), "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPlanCurrency(amount, tt.from, tt.to, tt.rate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestToPlanCurrency_IdentityForAnyRate(t *testing.T) {
	rates := []*Rate{nil, usdEgp("48.7"), {Base: "EUR", Quote: "GBP", Value: decimal.NewFromInt(2)}}
	for _, amt := range []string{"0", "-12.5", "1e9", "0.0001"} {
		x := decimal.RequireFromString(amt)
		for _, r := range rates {
			assert.True(t, ToPlanCurrency(x, "USD", "USD", r).Equal(x))
		}
	}
}

func TestConverts(t *testing.T) {
	assert.True(t, Converts("EGP", "EGP", nil))
	assert.True(t, Converts("USD", "EGP", usdEgp("50")))
	assert.True(t, Converts("EGP", "USD", usdEgp("50")))
	assert.False(t, Converts("USD", "EGP", nil))
	assert.False(t, Converts("EUR", "EGP", usdEgp("50")))
}

func TestRateInverse(t *testing.T) {
	inv := usdEgp("50").Inverse()
	assert.Equal(t, "EGP", inv.Base)
	assert.Equal(t, "USD", inv.Quote)
	assert.True(t, inv.Value.Equal(decimal.RequireFromString("0.02")))
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode(" egp ")
	assert.NoError(t, err)
	assert.Equal(t, "EGP", code)

	_, err = NormalizeCode("EG")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
