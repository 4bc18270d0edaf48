package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagFXRefresh bool

var fxCmd = &cobra.Command{
	Use:   "fx",
	Short: "Show the exchange rate used for conversions",
	RunE:  runFX,
}

func init() {
	fxCmd.Flags().BoolVar(&flagFXRefresh, "refresh", false, "Fetch a fresh quote even if the stored one is recent")
	rootCmd.AddCommand(fxCmd)
}

func runFX(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	local, plan := env.cfg.General.LocalCurrency, env.ws.PlanCurrency
	rate := env.resolveFX(ctx, flagFXRefresh)
	if rate == nil {
		fmt.Printf("  No %s/%s rate available.\n", local, plan)
		fmt.Println("  Pin one with --fx, NESTEGG_FX_RATE or `[fx] rate` in the config file.")
		return nil
	}

	fmt.Printf("  %s\n", rate)
	fmt.Printf("  %s\n", rate.Inverse())
	if !rate.AsOf.IsZero() {
		fmt.Printf("  As of %s (%s)\n", rate.AsOf.Local().Format(time.RFC3339), rate.Source)
	}
	if age := time.Since(rate.AsOf); rate.Source != "manual" && rate.Source != "flag" && age > env.cfg.FXMaxAge() {
		fmt.Printf("  Stale: older than %s\n", env.cfg.FXMaxAge())
	}
	return nil
}
