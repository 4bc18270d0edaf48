package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/tui/components"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

const scheduleYears = 15

func (a App) renderScheduleTab(cw int) string {
	t := theme.Active
	sched := a.opts.Schedule
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if sched == nil {
		return components.ContentCard("Rate schedule", dimStyle.Render("No schedule loaded."), cw)
	}

	from := a.opts.Today.Year
	to := from + scheduleYears - 1
	table := sched.Table(from, to)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pinStyle := lipgloss.NewStyle().Foreground(t.Pinned).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bars := make([]components.Bar, len(table))
	values := make([]float64, len(table))
	for i, r := range table {
		values[i] = r.Rate.InexactFloat64()
		bars[i] = components.Bar{Label: fmt.Sprintf("%d", r.Year), Value: values[i], Text: cli.FormatRate(r.Rate)}
	}

	var b strings.Builder
	b.WriteString(headStyle.Render("Annual rate applied at each renewal, pinned years marked ◆"))
	b.WriteString("\n\n")
	chart := strings.Split(components.BarChart(bars, 0, t.RateBar, components.CardInnerWidth(cw)-10), "\n")
	for i, line := range chart {
		source := rowStyle.Render("  ")
		if sched.IsOverridden(table[i].Year) {
			source = pinStyle.Render(" ◆")
		}
		b.WriteString(line + source + "\n")
	}
	b.WriteString("\n")
	b.WriteString(headStyle.Render("trend "))
	b.WriteString(components.Sparkline(values, t.RateBar))
	b.WriteString(dimStyle.Render("  Edit with `nestegg rates set <year> <rate>`"))

	return components.ContentCard(fmt.Sprintf("Rate schedule %d-%d", from, to), b.String(), cw)
}
