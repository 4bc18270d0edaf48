package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

// Status is what the bottom bar reports about the current view.
type Status struct {
	FX       string    // active exchange rate, empty when none
	FXStale  bool      // FX came from an old quote
	Updated  time.Time // when the snapshot was computed
	Busy     string    // background work in progress, empty when idle
	Currency string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	busyStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := textStyle.Render(" ") +
		keyStyle.Render("[?]") + textStyle.Render("help  ") +
		keyStyle.Render("[r]") + textStyle.Render("efresh  ") +
		keyStyle.Render("[q]") + textStyle.Render("uit")

	var right []string
	if s.Busy != "" {
		right = append(right, busyStyle.Render(s.Busy))
	}
	switch {
	case s.FX == "":
		right = append(right, warnStyle.Render("no FX rate"))
	case s.FXStale:
		right = append(right, warnStyle.Render(s.FX+" (stale)"))
	default:
		right = append(right, textStyle.Render(s.FX))
	}
	if !s.Updated.IsZero() {
		right = append(right, textStyle.Render("updated "+humanize.Time(s.Updated)))
	}
	rightStr := strings.Join(right, textStyle.Render("  │  ")) + textStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 1 {
		return barStyle.Width(width).Render(left)
	}
	return left + barStyle.Render(strings.Repeat(" ", padding)) + rightStr
}
