package cmd

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/config"
)

var (
	flagRatesFrom int
	flagRatesTo   int
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the annual rate schedule",
	RunE:  runRates,
}

var ratesSetCmd = &cobra.Command{
	Use:   "set <year> <rate>",
	Short: "Pin the rate for a year and save it to the config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRatesSet,
}

var ratesClearCmd = &cobra.Command{
	Use:   "clear <year>",
	Short: "Remove a year's pinned rate",
	Args:  cobra.ExactArgs(1),
	RunE:  runRatesClear,
}

func init() {
	ratesCmd.Flags().IntVar(&flagRatesFrom, "from", 0, "First year (default: earliest override or this year)")
	ratesCmd.Flags().IntVar(&flagRatesTo, "to", 0, "Last year (default: ten years out)")

	ratesCmd.AddCommand(ratesSetCmd, ratesClearCmd)
	rootCmd.AddCommand(ratesCmd)
}

func runRates(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sched, err := cfg.Schedule()
	if err != nil {
		return err
	}
	today, err := resolveToday()
	if err != nil {
		return err
	}

	from, to := flagRatesFrom, flagRatesTo
	if from == 0 {
		from = today.Year
		if ov := sched.Overrides(); len(ov) > 0 && ov[0].Year < from {
			from = ov[0].Year
		}
	}
	if to == 0 {
		to = today.Year + 10
	}
	if to < from {
		return fmt.Errorf("--to %d is before --from %d", to, from)
	}

	rows := make([][]string, 0, to-from+1)
	for _, r := range sched.Table(from, to) {
		source := "schedule"
		switch {
		case sched.IsOverridden(r.Year):
			source = "pinned"
		case r.Rate.Equal(sched.Floor):
			source = "floor"
		}
		rows = append(rows, []string{strconv.Itoa(r.Year), cli.FormatRate(r.Rate), source})
	}

	fmt.Println()
	fmt.Print(cli.RenderSummary("Rate schedule", []cli.KV{
		{Key: "Base", Value: fmt.Sprintf("%s in %d", cli.FormatRate(sched.BaseRate), sched.BaseYear)},
		{Key: "Step", Value: cli.FormatRate(sched.AnnualStep) + " per year"},
		{Key: "Floor", Value: cli.FormatRate(sched.Floor)},
	}))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Year", "Rate", "Source"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runRatesSet(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	rate, err := parseDecimal("rate", args[1])
	if err != nil {
		return err
	}
	if rate.IsNegative() {
		return fmt.Errorf("rate cannot be negative")
	}

	return updateOverrides(cmd, func(cfg *config.Config) error {
		sched, err := cfg.Schedule()
		if err != nil {
			return err
		}
		sched.SetOverride(year, rate)
		cfg.StoreOverrides(sched)
		fmt.Printf("  %d pinned at %s", year, cli.FormatRate(rate))
		if rate.LessThan(sched.Floor) {
			fmt.Printf(" (applied as the %s floor)", cli.FormatRate(sched.Floor))
		}
		fmt.Println()
		return nil
	})
}

func runRatesClear(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	return updateOverrides(cmd, func(cfg *config.Config) error {
		sched, err := cfg.Schedule()
		if err != nil {
			return err
		}
		if !sched.ClearOverride(year) {
			return fmt.Errorf("%d has no pinned rate", year)
		}
		cfg.StoreOverrides(sched)
		fmt.Printf("  %d now follows the schedule (%s)\n", year, cli.FormatRate(sched.RateForYear(year)))
		return nil
	})
}

// updateOverrides applies fn to the loaded config, saves it and drops any
// cached projections built on the old table.
func updateOverrides(cmd *cobra.Command, fn func(*config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	ctx := cmdContext(cmd)
	env, err := openEnvWith(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Debug("skipping cache invalidation")
		return nil
	}
	defer env.Close()
	env.invalidate(ctx)
	return nil
}
