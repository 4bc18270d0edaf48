package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

func init() {
	// ANSI output is needed to see background fill.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, LayoutRow(10, 3))
	assert.Nil(t, LayoutRow(10, 0))

	sum := 0
	for _, w := range LayoutRow(97, 4) {
		sum += w
	}
	assert.Equal(t, 97, sum)
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)
	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	require.Less(t, shortLines, tallLines)

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	require.Len(t, lines, tallLines)

	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "padding line %d has no styling", i)
	}
}

func TestMetricRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricRow([]Metric{
		{Label: "Savings", Value: "EGP 1.2M"},
		{Label: "Income", Value: "EGP 14,500", Note: "per month"},
		{Label: "Runway", Value: "38m", Warn: true},
	}, 90)

	assert.Equal(t, 90, lipgloss.Width(row))
	assert.Equal(t, 5, lipgloss.Height(row))
}
