package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/tui/components"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

const maxChartYears = 12

func (a App) renderLadderTab(cw int) string {
	parts := []string{components.MetricRow(a.headlineMetrics(), cw)}

	rec := a.state.Records
	if len(rec.Instruments) == 0 && len(rec.Accounts) == 0 && len(rec.Expenses) == 0 {
		parts = append(parts, components.ContentCard("Getting started",
			"No records yet. Add a certificate with `nestegg instruments add`,\n"+
				"a cash balance with `nestegg accounts set` and monthly costs with `nestegg expenses add`.", cw))
	}

	parts = append(parts, components.ContentCard("Milestones", a.renderLadderRows(components.CardInnerWidth(cw)), cw))
	if a.expanded != "" {
		parts = append(parts, a.renderTierDetail(cw))
	}
	return strings.Join(parts, "\n")
}

func (a App) headlineMetrics() []components.Metric {
	snap := a.state.Snapshot
	cur := a.planCurrency()

	runway := components.Metric{Label: "Runway", Value: "-", Note: "no expenses recorded"}
	if m := snap.MonthsOfExpensesSaved; m != nil {
		runway.Value = cli.FormatMonths(int(m.IntPart()))
		runway.Note = "of expenses saved"
		runway.Warn = m.LessThan(decimal.NewFromInt(6))
	}
	coverage := components.Metric{Label: "Coverage", Value: "-", Note: "income / expenses"}
	if c := snap.CoveragePercent; c != nil {
		coverage.Value = c.StringFixed(1) + "%"
		coverage.Warn = c.LessThan(decimal.NewFromInt(100))
	}

	return []components.Metric{
		{Label: "Savings", Value: cli.FormatCompact(snap.TotalSavings) + " " + cur, Note: "certificates and cash"},
		{Label: "Passive income", Value: cli.FormatMoney(snap.MonthlyPassiveIncome, cur), Note: "per month"},
		{Label: "Expenses", Value: cli.FormatMoney(snap.EstimatedMonthlyExpenses, cur), Note: "per month"},
		runway,
		coverage,
	}
}

func (a App) renderLadderRows(innerW int) string {
	t := theme.Active
	snap := a.state.Snapshot
	cur := a.planCurrency()

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	achievedStyle := lipgloss.NewStyle().Foreground(t.Achieved).Background(t.Surface)
	progressStyle := lipgloss.NewStyle().Foreground(t.InProgress).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	nameW := 0
	for _, m := range snap.Ladder {
		nameW = max(nameW, lipgloss.Width(cli.LevelName(m)))
	}
	nameW = min(nameW+4, innerW/3)

	header := fmt.Sprintf("    %-*s %12s %12s %6s  %s", nameW, "Level", "Savings", "Income/mo", "Done", "Estimated")
	lines := []string{dimStyle.Render(header)}

	for i, m := range snap.Ladder {
		reached := cli.Reached(snap, m.ID)
		glyph := dimStyle.Render("○")
		switch {
		case reached:
			glyph = achievedStyle.Render("✓")
		case m.ID == snap.CurrentLevelID:
			glyph = progressStyle.Render("●")
		}

		done := "-"
		if p, ok := snap.ProgressFor(m.ID); ok {
			done = cli.FormatPercent(p.Overall)
		}

		line := fmt.Sprintf("%-*s %12s %12s %6s  %s",
			nameW, cli.Truncate(fmt.Sprintf("%d. %s", m.Order, cli.LevelName(m)), nameW),
			cli.FormatThreshold(m.MinSavings, cur),
			cli.FormatThreshold(m.MinMonthlyRevenue, cur),
			done,
			a.arrival(m, reached),
		)

		marker := "  "
		style := rowStyle
		if i == a.cursor {
			marker = "▸ "
			style = selStyle
		}
		lines = append(lines, style.Render(marker)+glyph+style.Render(" "+line))
	}

	if a.estErr != nil {
		lines = append(lines, "", warnStyle.Render("Estimates unavailable: "+a.estErr.Error()))
	} else if a.cacheHits > 0 && !a.estimating {
		lines = append(lines, "", dimStyle.Render(fmt.Sprintf("%d of %d estimates from cache", a.cacheHits, len(snap.Ladder))))
	}
	lines = append(lines, "", dimStyle.Render("Enter expands a tier and projects it year by year"))
	return strings.Join(lines, "\n")
}

// arrival is the estimate column for m, a spinner while the pass runs.
func (a App) arrival(m model.Milestone, reached bool) string {
	if reached {
		return "reached"
	}
	est, ok := a.estimates[m.ID]
	if !ok {
		if a.estimating {
			return a.spinner.View()
		}
		return "-"
	}
	return cli.FormatArrival(est, false)
}

func (a App) renderTierDetail(cw int) string {
	t := theme.Active
	snap := a.state.Snapshot
	cur := a.planCurrency()
	innerW := components.CardInnerWidth(cw)

	m, ok := snap.Ladder.Find(a.expanded)
	if !ok {
		return ""
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	if m.Narrative != "" {
		b.WriteString(mutedStyle.Render(cli.Truncate(m.Narrative, innerW)))
		b.WriteString("\n\n")
	}

	barW := max(innerW-30, 10)
	if p, ok := snap.ProgressFor(m.ID); ok {
		if m.MinSavings != nil {
			b.WriteString(components.LevelBar("Savings", p.Savings.InexactFloat64(), 10, barW))
			b.WriteString(mutedStyle.Render("  of " + cli.FormatThreshold(m.MinSavings, cur)))
			b.WriteString("\n")
		}
		if m.MinMonthlyRevenue != nil {
			b.WriteString(components.LevelBar("Income", p.Revenue.InexactFloat64(), 10, barW))
			b.WriteString(mutedStyle.Render("  of " + cli.FormatThreshold(m.MinMonthlyRevenue, cur) + "/mo"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch rows, ok := a.projections[m.ID]; {
	case a.projecting == m.ID:
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Projecting..."))
	case a.projErr != nil && !ok:
		b.WriteString(warnStyle.Render("Projection failed: " + a.projErr.Error()))
	case ok && len(rows) > 0:
		b.WriteString(renderProjection(m, rows, cur, innerW))
		if last, ok := model.LastMonth(rows); ok {
			b.WriteString("\n\n")
			status := "beyond horizon"
			if m.Satisfied(last.EndBalance, last.Revenue) {
				status = "reached " + last.Label
			}
			b.WriteString(textStyle.Render(fmt.Sprintf("%s · final balance %s · revenue %s/mo",
				status, cli.FormatMoney(last.EndBalance, cur), cli.FormatMoney(last.Revenue, cur))))
		}
	default:
		b.WriteString(mutedStyle.Render("Nothing to project: no instruments participate."))
	}

	return components.ContentCard("Projection · "+cli.LevelName(m), b.String(), cw)
}

// renderProjection charts year-end balances against the savings target.
func renderProjection(m model.Milestone, rows []model.YearRow, cur string, width int) string {
	t := theme.Active
	bars := make([]components.Bar, len(rows))
	spark := make([]float64, len(rows))
	for i, y := range rows {
		v := y.EndBalance.InexactFloat64()
		spark[i] = v
		label := fmt.Sprintf("%d", y.Year)
		if y.Age > 0 {
			label += fmt.Sprintf(" (%d)", y.Age)
		}
		bars[i] = components.Bar{Label: label, Value: v, Text: cli.FormatCompact(y.EndBalance) + " " + cur}
	}

	target := 0.0
	if m.MinSavings != nil {
		target = m.MinSavings.InexactFloat64()
	}

	chart := components.BarChart(components.SampleBars(bars, maxChartYears), target, t.Accent, width)
	if len(rows) <= maxChartYears {
		return chart
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return chart + "\n" + muted.Render("all years ") + components.Sparkline(spark, t.Accent)
}
