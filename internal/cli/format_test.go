package cli

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in, cur, want string
	}{
		{"1234567.891", "EGP", "1,234,567.89 EGP"},
		{"0", "USD", "0.00 USD"},
		{"999.5", "", "999.50"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in), tt.cur); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := map[string]string{
		"950":        "950",
		"1234":       "1.2K",
		"1234567":    "1.2M",
		"3500000000": "3.5B",
		"-2500":      "-2.5K",
	}
	for in, want := range tests {
		if got := FormatCompact(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatCompact(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := map[int]string{0: "now", 11: "11m", 12: "1y", 40: "3y 4m"}
	for in, want := range tests {
		if got := FormatMonths(in); got != want {
			t.Errorf("FormatMonths(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRateAndPercent(t *testing.T) {
	if got := FormatRate(decimal.RequireFromString("17")); got != "17.00%" {
		t.Errorf("FormatRate = %q", got)
	}
	if got := FormatPercent(decimal.RequireFromString("0.456")); got != "45.6%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatOptional(nil, "EGP"); got != "-" {
		t.Errorf("FormatOptional(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("certificate", 5); got != "cert…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 5); got != "abc" {
		t.Errorf("Truncate short = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{1, 2, 3}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline([]float64{5, 5}); got != "▁▁" {
		t.Errorf("flat RenderSparkline = %q", got)
	}
}

func TestRenderTable_SeparatorRow(t *testing.T) {
	out := RenderTable(Table{Headers: []string{"Year", "End"}, Rows: [][]string{{"2026", "1"}, {"---"}, {"Total", "1"}}})
	if out == "" {
		t.Fatal("empty table")
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("table with no headers or rows should render empty")
	}
}
