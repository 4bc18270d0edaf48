package tui

import (
	"testing"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/nestegg/internal/config"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/pipeline"
	"github.com/theirongolddev/nestegg/internal/projcache"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
)

type staticRecords struct{ rec model.Records }

func (s staticRecords) LoadRecords() (model.Records, error) { return s.rec, nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testToday = civil.Date{Year: 2026, Month: 10, Day: 16}

func testOptions(t *testing.T) Options {
	t.Helper()
	ladder, err := config.LoadLadder("")
	require.NoError(t, err)

	sched := rates.New(2024, dec("27"), dec("-2"), dec("10"))
	rate := dec("20")
	rec := model.Records{
		Instruments: []model.Instrument{{
			ID: "cd-1", Label: "3y certificate", Principal: dec("300000"), Currency: "EGP",
			StartDate: civil.Date{Year: 2025, Month: 1, Day: 1}, TermMonths: 36, AnnualRatePercent: &rate,
		}},
		Accounts: []model.Account{{Name: "checking", Balance: dec("10000"), Currency: "EGP"}},
		Expenses: []model.Expense{{Label: "rent", Monthly: dec("4000"), Currency: "EGP"}},
	}

	return Options{
		Workspace: &pipeline.Workspace{
			Engine:       projection.New(sched, civil.Date{Year: 1990, Month: 6, Day: 1}),
			Rates:        sched,
			Ladder:       ladder,
			PlanCurrency: "EGP",
			Cache:        projcache.NewMemory(),
		},
		Records:  staticRecords{rec: rec},
		Schedule: sched,
		Today:    testToday,
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	out, ok := m.(App)
	require.True(t, ok)
	return out, cmd
}

// loadedApp returns an app that has received its first snapshot.
func loadedApp(t *testing.T) App {
	t.Helper()
	opts := testOptions(t)
	a := NewApp(opts)
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 60})

	msg := loadStateCmd(opts, a.gen, false)()
	loaded, ok := msg.(StateLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)

	a, cmd := update(t, a, loaded)
	require.NotNil(t, cmd)
	return a
}

// finishEstimates drives the estimation pass to completion.
func finishEstimates(t *testing.T, a App) App {
	t.Helper()
	msg := estimateCmd(a.opts.Workspace, a.state, a.gen, a.estSub)()
	for {
		var cmd tea.Cmd
		a, cmd = update(t, a, msg)
		if _, done := msg.(EstimatesDoneMsg); done {
			return a
		}
		require.NotNil(t, cmd)
		msg = cmd()
	}
}

func TestAppLoadSelectsCurrentLevel(t *testing.T) {
	a := loadedApp(t)

	assert.True(t, a.loaded)
	assert.True(t, a.estimating)
	assert.Equal(t, "cushion", a.state.Snapshot.CurrentLevelID)
	assert.Equal(t, 1, a.cursor)
}

func TestAppEstimates(t *testing.T) {
	a := finishEstimates(t, loadedApp(t))

	assert.False(t, a.estimating)
	require.NoError(t, a.estErr)
	assert.Len(t, a.estimates, len(a.state.Snapshot.Ladder))

	view := ansi.Strip(a.View())
	assert.Contains(t, view, "Milestones")
	assert.Contains(t, view, "reached")
}

func TestAppDropsStaleMessages(t *testing.T) {
	a := loadedApp(t)

	a, _ = update(t, a, EstimatesDoneMsg{Gen: a.gen + 1, Result: &pipeline.EstimateResult{}})
	assert.True(t, a.estimating, "a newer generation's result must not end this pass")

	a, _ = update(t, a, ProjectionMsg{Gen: a.gen - 1, LevelID: "stable"})
	assert.NotContains(t, a.projections, "stable")
}

func TestAppNavigation(t *testing.T) {
	a := loadedApp(t)
	n := len(a.state.Snapshot.Ladder)

	a, _ = update(t, a, keyMsg("j"))
	assert.Equal(t, 2, a.cursor)
	for range n + 2 {
		a, _ = update(t, a, keyMsg("j"))
	}
	assert.Equal(t, n-1, a.cursor)
	a, _ = update(t, a, keyMsg("g"))
	assert.Equal(t, 0, a.cursor)
	a, _ = update(t, a, keyMsg("k"))
	assert.Equal(t, 0, a.cursor)

	a, _ = update(t, a, keyMsg("i"))
	assert.Equal(t, 1, a.activeTab)
	assert.Contains(t, ansi.Strip(a.View()), "3y certificate")

	a, _ = update(t, a, keyMsg("s"))
	assert.Equal(t, 2, a.activeTab)
	assert.Contains(t, ansi.Strip(a.View()), "Rate schedule 2026-2040")

	a, _ = update(t, a, keyMsg("?"))
	assert.True(t, a.showHelp)
	a, _ = update(t, a, keyMsg("x"))
	assert.False(t, a.showHelp)
}

func TestAppExpandProjectsTier(t *testing.T) {
	a := loadedApp(t)
	a, _ = update(t, a, keyMsg("j")) // stable

	a, cmd := update(t, a, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, "stable", a.expanded)
	assert.Equal(t, "stable", a.projecting)
	assert.Contains(t, ansi.Strip(a.View()), "Projecting...")

	a, _ = update(t, a, projectCmd(a.opts.Workspace, a.state, a.gen, "stable")())
	assert.Empty(t, a.projecting)
	require.NotEmpty(t, a.projections["stable"])
	assert.Contains(t, ansi.Strip(a.View()), "Projection · Stable")

	// collapsing and expanding again reuses the projection
	a, _ = update(t, a, keyMsg("enter"))
	assert.Empty(t, a.expanded)
	a, cmd = update(t, a, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Empty(t, a.projecting)
}

func TestAppReloadBumpsGeneration(t *testing.T) {
	a := finishEstimates(t, loadedApp(t))
	gen := a.gen

	a, cmd := update(t, a, keyMsg("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, gen+1, a.gen)
	assert.True(t, a.reloading)
	assert.Nil(t, a.estimates)

	a, _ = update(t, a, StateLoadedMsg{Gen: gen, State: a.state})
	assert.True(t, a.reloading, "old generation ignored")

	msg := loadStateCmd(a.opts, a.gen, false)()
	a, _ = update(t, a, msg)
	assert.False(t, a.reloading)
	assert.True(t, a.estimating)
}

func TestTabAtX(t *testing.T) {
	a := App{}
	assert.Equal(t, 0, a.tabAtX(3))
	assert.Equal(t, -1, a.tabAtX(8)) // divider
	assert.Equal(t, 1, a.tabAtX(9))
	assert.Equal(t, 2, a.tabAtX(20))
	assert.Equal(t, -1, a.tabAtX(200))
}
