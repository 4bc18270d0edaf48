package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/tui/components"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

func (a App) renderIncomeTab(cw int) string {
	t := theme.Active
	cur := a.planCurrency()
	income := a.state.Income

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(income) == 0 {
		return components.ContentCard("Passive income", dimStyle.Render("No certificates recorded."), cw)
	}

	innerW := components.CardInnerWidth(cw)
	labelW := max(innerW-70, 12)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s %14s %8s %12s %7s  %-10s",
		labelW, "Instrument", "Principal", "Rate", "Monthly", "Share", "Renews")))
	b.WriteString("\n")

	total := decimal.Zero
	eligible := 0
	for _, s := range income {
		renewal := "-"
		if !s.NextRenewal.IsZero() {
			renewal = s.NextRenewal.String()
		}
		style := rowStyle
		if !s.Eligible {
			style = dimStyle
		} else {
			eligible++
		}
		total = total.Add(s.MonthlyIncome)
		b.WriteString(style.Render(fmt.Sprintf("%-*s %14s %8s %12s %7s  %-10s",
			labelW, cli.Truncate(s.Label, labelW),
			cli.FormatMoney(s.Principal, ""),
			cli.FormatRate(s.Rate),
			cli.FormatMoney(s.MonthlyIncome, ""),
			s.SharePercent.StringFixed(1)+"%",
			renewal)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d instruments earning · %s/mo",
		eligible, len(income), cli.FormatMoney(total, cur))))
	if len(a.state.Unconverted) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Unconverted).Background(t.Surface).Render(
			"No exchange rate for " + strings.Join(a.state.Unconverted, ", ") + ", amounts counted as " + cur))
	}

	return components.ContentCard("Passive income by instrument ("+cur+")", b.String(), cw)
}
