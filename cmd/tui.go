package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/config"
	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/tui"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// First run: collect the basics before anything is computed.
	if !config.Exists() {
		edited, err := tui.RunSetup(cfg)
		switch {
		case errors.Is(err, huh.ErrUserAborted):
			fmt.Println("  Setup skipped, using defaults. Run `nestegg setup` later.")
		case err != nil:
			return err
		default:
			if err := config.Save(edited); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			cfg = edited
		}
	}

	theme.SetActive(cfg.Appearance.Theme)
	// Force TrueColor so background styling produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	env, err := openEnvWith(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	app := tui.NewApp(tui.Options{
		Workspace: env.ws,
		Records:   env.store,
		Schedule:  env.schedule,
		ResolveFX: func(ctx context.Context, refresh bool) *fx.Rate {
			return env.resolveFX(ctx, refresh)
		},
		FXMaxAge: cfg.FXMaxAge(),
		Today:    env.today,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
