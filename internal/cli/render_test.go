package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

func plainOutput(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestRenderTable(t *testing.T) {
	plainOutput(t)
	out := RenderTable(Table{
		Title:   "Ladder",
		Headers: []string{"Level", "Savings"},
		Rows: [][]string{
			{"starter", "50,000"},
			{"---"},
			{"stable", "1,200,000"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want 8:\n%s", len(lines), out)
	}
	if lines[3] != "├─────────┼───────────┤" {
		t.Errorf("header separator = %q", lines[3])
	}
	if lines[4] != "│ starter │    50,000 │" {
		t.Errorf("first row = %q", lines[4])
	}
	if lines[5] != lines[3] {
		t.Errorf("separator row = %q, want %q", lines[5], lines[3])
	}
}

func TestRenderSummaryAligned(t *testing.T) {
	plainOutput(t)
	out := RenderSummary("", []KV{
		{Key: "Level", Value: "cushion"},
		{Key: "Savings", Value: "310,000.00 EGP", Warn: true},
	})
	want := "  Level    cushion\n  Savings  310,000.00 EGP\n"
	if out != want {
		t.Fatalf("RenderSummary = %q, want %q", out, want)
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	plainOutput(t)
	if got := RenderProgressBar(decimal.NewFromInt(2), 4); !strings.HasPrefix(got, "████ ") {
		t.Errorf("over-full bar = %q", got)
	}
	if got := RenderProgressBar(decimal.NewFromInt(-1), 4); !strings.HasPrefix(got, "░░░░ ") {
		t.Errorf("negative bar = %q", got)
	}
	if got := RenderProgressBar(decimal.NewFromInt(1), 0); got != "" {
		t.Errorf("zero width bar = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 7, 14}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{5, 5}); got != "▁▁" {
		t.Errorf("flat sparkline = %q, want ▁▁", got)
	}
}
