// Package tui provides the interactive Bubble Tea dashboard for nestegg.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/pipeline"
	"github.com/theirongolddev/nestegg/internal/rates"
	"github.com/theirongolddev/nestegg/internal/tui/components"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

// Options wires the dashboard to a loaded workspace.
type Options struct {
	Workspace *pipeline.Workspace
	Records   pipeline.RecordSource
	Schedule  *rates.Schedule
	ResolveFX func(ctx context.Context, refresh bool) *fx.Rate // nil means no conversion
	FXMaxAge  time.Duration
	Today     civil.Date
}

// StateLoadedMsg is sent when the snapshot has been computed.
type StateLoadedMsg struct {
	Gen     int
	State   *pipeline.State
	Err     error
	Elapsed time.Duration
}

// EstimateProgressMsg reports how many ladder tiers have been projected.
type EstimateProgressMsg struct {
	Gen     int
	Current int
	Total   int
}

// EstimatesDoneMsg carries the finished estimation pass.
type EstimatesDoneMsg struct {
	Gen    int
	Result *pipeline.EstimateResult
	Err    error
}

// ProjectionMsg carries the projection for one expanded tier.
type ProjectionMsg struct {
	Gen     int
	LevelID string
	Rows    []model.YearRow
	Err     error
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	state     *pipeline.State
	loaded    bool
	loadErr   error
	loadedAt  time.Time
	loadTime  time.Duration
	reloading bool
	gen       int // bumped on every reload; older messages are dropped

	// Estimation pass, streamed through estSub
	estimates  map[string]model.Estimate
	estErr     error
	cacheHits  int
	estimating bool
	estDone    int
	estTotal   int
	estSub     chan tea.Msg

	// Expanded tier projections
	projections map[string][]model.YearRow
	projErr     error
	projecting  string

	// UI state
	width     int
	height    int
	activeTab int
	cursor    int
	expanded  string
	showHelp  bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:        opts,
		spinner:     sp,
		projections: make(map[string][]model.YearRow),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadStateCmd(a.opts, a.gen, false),
		a.spinner.Tick,
	)
}

func (a App) busy() bool {
	return !a.loaded || a.reloading || a.estimating || a.projecting != ""
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == 0 {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == 0 {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case StateLoadedMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.loadTime = msg.Elapsed
		a.reloading = false
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.loaded = true
			return a, nil
		}
		first := a.state == nil
		a.state = msg.State
		a.loadErr = nil
		a.loaded = true
		a.loadedAt = time.Now()
		if first {
			a.cursor = a.currentIndex()
		}
		cmd := tea.Batch(a.startEstimates(), a.reproject())
		return a, cmd

	case EstimateProgressMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.estDone = msg.Current
		a.estTotal = msg.Total
		return a, waitForMsg(a.estSub)

	case EstimatesDoneMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.estimating = false
		a.estErr = msg.Err
		if msg.Result != nil {
			a.estimates = make(map[string]model.Estimate, len(msg.Result.Estimates))
			for _, e := range msg.Result.Estimates {
				a.estimates[e.LevelID] = e
			}
			a.cacheHits = msg.Result.CacheHits
		}
		return a, nil

	case ProjectionMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.projecting = ""
		a.projErr = msg.Err
		if msg.Err == nil {
			a.projections[msg.LevelID] = msg.Rows
		}
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if key == "q" {
		return a, tea.Quit
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "r":
		return a.reload(false)
	case "R":
		return a.reload(true)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if a.activeTab != 0 || a.state == nil {
		return a, nil
	}

	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.cursor = 0
	case "G", "end":
		a.cursor = len(a.state.Snapshot.Ladder) - 1
	case "esc":
		a.expanded = ""
	case "enter", " ":
		return a.toggleExpanded()
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	if a.state == nil {
		return
	}
	n := len(a.state.Snapshot.Ladder)
	a.cursor = min(max(a.cursor+delta, 0), n-1)
}

// currentIndex is the ladder position of the current tier.
func (a App) currentIndex() int {
	for i, m := range a.state.Snapshot.Ladder {
		if m.ID == a.state.Snapshot.CurrentLevelID {
			return i
		}
	}
	return 0
}

func (a App) toggleExpanded() (tea.Model, tea.Cmd) {
	ladder := a.state.Snapshot.Ladder
	if a.cursor < 0 || a.cursor >= len(ladder) {
		return a, nil
	}
	id := ladder[a.cursor].ID
	if a.expanded == id {
		a.expanded = ""
		return a, nil
	}
	a.expanded = id
	cmd := a.reproject()
	return a, cmd
}

// reproject starts the projection for the expanded tier when it is not
// already computed or in flight.
func (a *App) reproject() tea.Cmd {
	if a.expanded == "" || a.state == nil || a.projecting == a.expanded {
		return nil
	}
	if _, ok := a.projections[a.expanded]; ok {
		return nil
	}
	a.projecting = a.expanded
	a.projErr = nil
	return tea.Batch(projectCmd(a.opts.Workspace, a.state, a.gen, a.expanded), a.spinner.Tick)
}

func (a *App) startEstimates() tea.Cmd {
	n := len(a.state.Snapshot.Ladder)
	a.estimating = true
	a.estDone, a.estTotal = 0, n
	a.estErr = nil
	// Room for every progress message plus the result, so an abandoned
	// pass never blocks.
	a.estSub = make(chan tea.Msg, n+1)
	return tea.Batch(estimateCmd(a.opts.Workspace, a.state, a.gen, a.estSub), a.spinner.Tick)
}

// reload drops cached projections and recomputes everything. refreshFX
// also bypasses the stored exchange rate.
func (a App) reload(refreshFX bool) (tea.Model, tea.Cmd) {
	if ws := a.opts.Workspace; ws != nil && ws.Cache != nil {
		if err := ws.Cache.Invalidate(context.Background()); err != nil {
			logrus.WithError(err).Warn("projection cache invalidation failed")
		}
	}
	a.gen++
	a.estimates = nil
	a.estimating = false
	a.projections = make(map[string][]model.YearRow)
	a.projecting = ""
	a.reloading = true
	return a, tea.Batch(loadStateCmd(a.opts, a.gen, refreshFX), a.spinner.Tick)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded || a.state == nil {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  nestegg needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ nestegg"))
	b.WriteString(subtitleStyle.Render(" · savings milestones"))
	b.WriteString("\n\n")

	if a.loadErr != nil && !a.reloading {
		b.WriteString(errStyle.Render("Could not load your plan:"))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(a.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("Press q to quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Loading records and exchange rate..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"l i s", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move through the ladder"},
		{"Enter", "Expand tier and project it"},
		{"Esc", "Collapse"},
		{"r", "Recompute (clears projection cache)"},
		{"R", "Recompute and refetch the exchange rate"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderInfoRow(w)
	statusBar := components.RenderStatusBar(w, a.status())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderLadderTab(cw)
	case 1:
		content = a.renderIncomeTab(cw)
	case 2:
		content = a.renderScheduleTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderInfoRow(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	unconverted := lipgloss.NewStyle().Foreground(t.Unconverted).Background(t.Surface)

	s := dim.Render(" ") + accent.Render(a.planCurrency()) +
		dim.Render(" │ ") + accent.Render(a.opts.Today.String())
	if a.state != nil {
		if m, ok := a.state.Snapshot.Ladder.Find(a.state.Snapshot.CurrentLevelID); ok {
			s += dim.Render(" │ level ") + accent.Render(cli.LevelName(m))
		}
		if len(a.state.Unconverted) > 0 {
			s += dim.Render(" │ ") + unconverted.Render("no rate for "+strings.Join(a.state.Unconverted, ", "))
		}
	}
	if a.loadErr != nil {
		s += dim.Render(" │ ") + warn.Render("reload failed: "+a.loadErr.Error())
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(s)
}

func (a App) status() components.Status {
	s := components.Status{Updated: a.loadedAt, Currency: a.planCurrency()}
	if a.state != nil && a.state.FX.Valid() {
		s.FX = a.state.FX.String()
		s.FXStale = a.opts.FXMaxAge > 0 && time.Since(a.state.FX.AsOf) > a.opts.FXMaxAge
	}
	switch {
	case a.reloading:
		s.Busy = a.spinner.View() + " reloading"
	case a.estimating:
		s.Busy = fmt.Sprintf("%s projecting %d/%d", a.spinner.View(), a.estDone, a.estTotal)
	case a.projecting != "":
		s.Busy = a.spinner.View() + " projecting " + a.projecting
	}
	return s
}

func (a App) planCurrency() string {
	if a.opts.Workspace == nil {
		return ""
	}
	return a.opts.Workspace.PlanCurrency
}

// ─── Commands ───────────────────────────────────────────────────

// loadStateCmd resolves the exchange rate and computes the snapshot.
func loadStateCmd(opts Options, gen int, refreshFX bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var rate *fx.Rate
		if opts.ResolveFX != nil {
			rate = opts.ResolveFX(ctx, refreshFX)
		}
		st, err := opts.Workspace.Compute(opts.Records, rate, opts.Today)
		return StateLoadedMsg{Gen: gen, State: st, Err: err, Elapsed: time.Since(start)}
	}
}

// estimateCmd runs the estimation pass in a background goroutine, streaming
// EstimateProgressMsg updates and a final EstimatesDoneMsg through sub.
func estimateCmd(ws *pipeline.Workspace, st *pipeline.State, gen int, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			progressFn := func(current, total int) {
				select {
				case sub <- EstimateProgressMsg{Gen: gen, Current: current, Total: total}:
				default:
				}
			}
			res, err := ws.Estimates(context.Background(), st, progressFn)
			sub <- EstimatesDoneMsg{Gen: gen, Result: res, Err: err}
		}()
		return <-sub
	}
}

// waitForMsg blocks until the next message arrives from a background pass.
func waitForMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func projectCmd(ws *pipeline.Workspace, st *pipeline.State, gen int, levelID string) tea.Cmd {
	return func() tea.Msg {
		_, rows, err := ws.Project(context.Background(), st, levelID)
		return ProjectionMsg{Gen: gen, LevelID: levelID, Rows: rows, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow RenderTabBar: tabs separated by a one-column divider.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
