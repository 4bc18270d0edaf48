// Package theme defines the color palettes for the nestegg dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps dashboard roles to colors.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards, info row, status bar
	SurfaceHover lipgloss.Color // selected ladder row, active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // loading and help cards

	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Progress scale, low to high: Red, Orange, Yellow, Green, GreenBright.
	Red         lipgloss.Color
	Orange      lipgloss.Color
	Yellow      lipgloss.Color
	Green       lipgloss.Color
	GreenBright lipgloss.Color
	Cyan        lipgloss.Color // key hints, full progress bars

	Achieved    lipgloss.Color // tiers whose thresholds hold today
	InProgress  lipgloss.Color // the tier being worked toward
	Pinned      lipgloss.Color // schedule years with a rate override
	RateBar     lipgloss.Color // schedule bars and trend line
	Unconverted lipgloss.Color // amounts counted without an exchange rate
}

// palette is the raw set of hues a theme is derived from.
type palette struct {
	bg, surface, hover, border string
	dim, muted, text           string
	accent, accentHi           string
	red, orange, yellow        string
	green, greenHi, cyan, blue string
}

func newTheme(name string, p palette) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:         name,
		Background:   c(p.bg),
		Surface:      c(p.surface),
		SurfaceHover: c(p.hover),
		Border:       c(p.border),
		BorderAccent: c(p.accent),
		TextDim:      c(p.dim),
		TextMuted:    c(p.muted),
		TextPrimary:  c(p.text),
		Accent:       c(p.accent),
		AccentBright: c(p.accentHi),
		Red:          c(p.red),
		Orange:       c(p.orange),
		Yellow:       c(p.yellow),
		Green:        c(p.green),
		GreenBright:  c(p.greenHi),
		Cyan:         c(p.cyan),
		Achieved:     c(p.greenHi),
		InProgress:   c(p.yellow),
		Pinned:       c(p.accentHi),
		RateBar:      c(p.blue),
		Unconverted:  c(p.orange),
	}
}

// FlexokiDark is the default: warm ink on paper-dark surfaces.
var FlexokiDark = newTheme("flexoki-dark", palette{
	bg: "#100F0F", surface: "#1C1B1A", hover: "#282726", border: "#403E3C",
	dim: "#575653", muted: "#878580", text: "#FFFCF0",
	accent: "#3AA99F", accentHi: "#5BC8BE",
	red: "#D14D41", orange: "#DA702C", yellow: "#D0A215",
	green: "#879A39", greenHi: "#A3B859", cyan: "#24837B", blue: "#4385BE",
})

// GruvboxDark trades teal accents for earthy greens.
var GruvboxDark = newTheme("gruvbox-dark", palette{
	bg: "#1D2021", surface: "#282828", hover: "#3C3836", border: "#504945",
	dim: "#665C54", muted: "#A89984", text: "#FBF1C7",
	accent: "#689D6A", accentHi: "#8EC07C",
	red: "#FB4934", orange: "#FE8019", yellow: "#FABD2F",
	green: "#98971A", greenHi: "#B8BB26", cyan: "#83A598", blue: "#458588",
})

// TokyoNight is cool blue on indigo.
var TokyoNight = newTheme("tokyo-night", palette{
	bg: "#1A1B26", surface: "#24283B", hover: "#343A52", border: "#565F89",
	dim: "#565F89", muted: "#A9B1D6", text: "#C0CAF5",
	accent: "#7AA2F7", accentHi: "#A9C1FF",
	red: "#F7768E", orange: "#FF9E64", yellow: "#E0AF68",
	green: "#9ECE6A", greenHi: "#B9E87A", cyan: "#7DCFFF", blue: "#2AC3DE",
})

// Terminal sticks to the 16 ANSI colors.
var Terminal = newTheme("terminal", palette{
	bg: "0", surface: "0", hover: "8", border: "8",
	dim: "8", muted: "7", text: "15",
	accent: "6", accentHi: "14",
	red: "1", orange: "3", yellow: "11",
	green: "2", greenHi: "10", cyan: "6", blue: "4",
})

// All lists the selectable themes in display order.
var All = []Theme{FlexokiDark, GruvboxDark, TokyoNight, Terminal}

// Active is the theme every view renders with.
var Active = FlexokiDark

// ByName returns the named theme, FlexokiDark when the name is unknown.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive switches Active to the named theme.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists every theme name in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}
