package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as unicode blocks scaled between their minimum
// and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // rendered to the right of the bar
}

// BarChart renders one horizontal bar per row, scaled to the largest value.
// When target is positive a marker is drawn at its column and bars that
// cross it use the highlight color.
func BarChart(bars []Bar, target float64, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := target
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	if peak <= 0 {
		peak = 1
	}

	barW := width - labelW - textW - 2
	if barW < 5 {
		barW = 5
	}
	marker := -1
	if target > 0 {
		marker = int(target / peak * float64(barW-1))
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	markStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	var b strings.Builder
	for i, bar := range bars {
		fillColor := color
		if target > 0 && bar.Value >= target {
			fillColor = t.GreenBright
		}
		fillStyle := lipgloss.NewStyle().Foreground(fillColor).Background(t.Surface)

		filled := int(bar.Value / peak * float64(barW))
		filled = min(max(filled, 0), barW)

		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, bar.Label)))
		for col := 0; col < barW; col++ {
			switch {
			case col < filled:
				b.WriteString(fillStyle.Render("█"))
			case col == marker:
				b.WriteString(markStyle.Render("┊"))
			default:
				b.WriteString(emptyStyle.Render("·"))
			}
		}
		b.WriteString(textStyle.Render(fmt.Sprintf(" %*s", textW, bar.Text)))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SampleBars keeps at most n bars, always including the first and last.
func SampleBars(bars []Bar, n int) []Bar {
	if n <= 1 || len(bars) <= n {
		return bars
	}
	out := make([]Bar, n)
	for i := range out {
		out[i] = bars[i*(len(bars)-1)/(n-1)]
	}
	return out
}
