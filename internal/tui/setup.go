package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/nestegg/internal/config"
	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/tui/theme"
)

// setupValues are the fields the first-run form edits. Everything is a
// string so huh inputs can bind to it directly.
type setupValues struct {
	BirthDate     string
	PlanCurrency  string
	LocalCurrency string
	FXRate        string
	Theme         string
}

func setupValuesFrom(cfg config.Config) *setupValues {
	v := &setupValues{
		BirthDate:     cfg.General.BirthDate,
		PlanCurrency:  cfg.General.PlanCurrency,
		LocalCurrency: cfg.General.LocalCurrency,
		Theme:         cfg.Appearance.Theme,
	}
	if cfg.FX.Rate != nil {
		v.FXRate = strconv.FormatFloat(*cfg.FX.Rate, 'f', -1, 64)
	}
	return v
}

// apply copies the form values onto cfg. Inputs were validated by the form.
func (v *setupValues) apply(cfg *config.Config) {
	cfg.General.BirthDate = strings.TrimSpace(v.BirthDate)
	if code, err := fx.NormalizeCode(v.PlanCurrency); err == nil {
		cfg.General.PlanCurrency = code
	}
	if code, err := fx.NormalizeCode(v.LocalCurrency); err == nil {
		cfg.General.LocalCurrency = code
	}
	cfg.FX.Rate = nil
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.FXRate), 64); err == nil && f > 0 {
		cfg.FX.Rate = &f
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
}

func validateBirthDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := civil.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateCurrency(s string) error {
	if _, err := fx.NormalizeCode(s); err != nil {
		return fmt.Errorf("not an ISO 4217 code: %q", s)
	}
	return nil
}

func validateFXRate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return errors.New("must be a positive number")
	}
	return nil
}

func newSetupForm(v *setupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Birth date").
				Description("Used to show your age at each milestone. Leave empty to skip.").
				Placeholder("1990-04-21").
				Value(&v.BirthDate).
				Validate(validateBirthDate),
			huh.NewInput().
				Title("Plan currency").
				Description("Savings and milestones are measured in this currency.").
				Value(&v.PlanCurrency).
				Validate(validateCurrency),
			huh.NewInput().
				Title("Local currency").
				Description("Amounts held in this currency are converted to the plan currency.").
				Value(&v.LocalCurrency).
				Validate(validateCurrency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Exchange rate").
				Description("Pin the local→plan rate. Leave empty to fetch it.").
				Value(&v.FXRate).
				Validate(validateFXRate),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themes...).
				Value(&v.Theme),
		),
	).WithShowHelp(true)
}

// RunSetup runs the setup form in the foreground and returns the edited
// config. huh.ErrUserAborted is returned unchanged when the user quits.
func RunSetup(cfg config.Config) (config.Config, error) {
	v := setupValuesFrom(cfg)
	if err := newSetupForm(v).Run(); err != nil {
		return cfg, err
	}
	v.apply(&cfg)
	return cfg, nil
}
