package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	status := "loaded"
	if !config.Exists() {
		status = "using defaults (no config file)"
	}
	fmt.Print(cli.RenderSummary("", []cli.KV{
		{Key: "Config file", Value: config.ConfigPath()},
		{Key: "Status", Value: status},
		{Key: "Database", Value: flagDB},
	}))
	fmt.Println()

	birth := cfg.General.BirthDate
	if birth == "" {
		birth = "not set"
	}
	fmt.Print(cli.RenderSummary("[general]", []cli.KV{
		{Key: "Birth date", Value: birth, Warn: cfg.General.BirthDate == ""},
		{Key: "Plan currency", Value: config.PlanCurrency(cfg)},
		{Key: "Local currency", Value: cfg.General.LocalCurrency},
		{Key: "Log level", Value: cfg.General.LogLevel},
	}))
	fmt.Println()

	rateLines := []cli.KV{
		{Key: "Base", Value: fmt.Sprintf("%s from %d", cli.FormatRate(floatDecimal(cfg.Rates.BaseRate)), cfg.Rates.BaseYear)},
		{Key: "Annual step", Value: cli.FormatRate(floatDecimal(cfg.Rates.AnnualStep))},
		{Key: "Floor", Value: cli.FormatRate(floatDecimal(cfg.Rates.Floor))},
	}
	years := make([]string, 0, len(cfg.Rates.Overrides))
	for y := range cfg.Rates.Overrides {
		years = append(years, y)
	}
	sort.Strings(years)
	for _, y := range years {
		rateLines = append(rateLines, cli.KV{Key: "Pinned " + y, Value: cli.FormatRate(floatDecimal(cfg.Rates.Overrides[y]))})
	}
	fmt.Print(cli.RenderSummary("[rates]", rateLines))
	fmt.Println()

	fmt.Print(cli.RenderSummary("[projection]", []cli.KV{
		{Key: "Reinvest step", Value: cli.FormatNumber(int64(cfg.Projection.ReinvestStep))},
		{Key: "Reinvest term", Value: cli.FormatMonths(cfg.Projection.ReinvestTermMonths)},
		{Key: "Horizon", Value: cli.FormatMonths(cfg.Projection.HorizonMonths)},
	}))
	fmt.Println()

	manual := "not set"
	if r := config.ManualFXRate(cfg); r != nil {
		manual = r.String()
	}
	fmt.Print(cli.RenderSummary("[fx]", []cli.KV{
		{Key: "Manual rate", Value: manual},
		{Key: "Provider", Value: cfg.FX.Provider},
		{Key: "Max age", Value: strconv.Itoa(cfg.FX.MaxAgeHours) + "h"},
	}))
	fmt.Println()

	redis := config.RedisAddr(cfg)
	if redis == "" {
		redis = "not configured (in-process cache)"
	}
	ladder := cfg.Ladder.Path
	if ladder == "" {
		ladder = "built-in"
	}
	fmt.Print(cli.RenderSummary("[other]", []cli.KV{
		{Key: "Ladder", Value: ladder},
		{Key: "Redis", Value: redis},
		{Key: "Cache TTL", Value: strconv.Itoa(cfg.Cache.TTLMinutes) + "m"},
		{Key: "Daemon", Value: fmt.Sprintf("%s every %ds", cfg.Daemon.Addr, cfg.Daemon.IntervalSec)},
		{Key: "Theme", Value: cfg.Appearance.Theme},
	}))
	fmt.Println()

	fmt.Println("  Run `nestegg setup` to reconfigure.")
	return nil
}
