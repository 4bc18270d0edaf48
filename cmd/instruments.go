package cmd

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projection"
)

var (
	flagInstLabel     string
	flagInstPrincipal string
	flagInstCurrency  string
	flagInstStart     string
	flagInstTerm      int
	flagInstRate      string
)

var instrumentsCmd = &cobra.Command{
	Use:     "instruments",
	Aliases: []string{"inst"},
	Short:   "Manage interest-bearing instruments",
	RunE:    runInstrumentsList,
}

var instrumentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instruments with their current rate",
	RunE:  runInstrumentsList,
}

var instrumentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a certificate or deposit",
	RunE:  runInstrumentsAdd,
}

var instrumentsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an instrument",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstrumentsRm,
}

func init() {
	instrumentsAddCmd.Flags().StringVar(&flagInstLabel, "label", "", "Display label")
	instrumentsAddCmd.Flags().StringVar(&flagInstPrincipal, "principal", "", "Principal amount")
	instrumentsAddCmd.Flags().StringVar(&flagInstCurrency, "currency", "", "Currency code (default: plan currency)")
	instrumentsAddCmd.Flags().StringVar(&flagInstStart, "start", "", "Start date YYYY-MM-DD (default: today)")
	instrumentsAddCmd.Flags().IntVar(&flagInstTerm, "term", 36, "Term in months")
	instrumentsAddCmd.Flags().StringVar(&flagInstRate, "rate", "", "Annual rate in percent (default: schedule rate for the start year)")
	_ = instrumentsAddCmd.MarkFlagRequired("principal")

	instrumentsCmd.AddCommand(instrumentsListCmd, instrumentsAddCmd, instrumentsRmCmd)
	rootCmd.AddCommand(instrumentsCmd)
}

func runInstrumentsList(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmdContext(cmd))
	if err != nil {
		return err
	}
	defer env.Close()

	insts, err := env.store.ListInstruments()
	if err != nil {
		return err
	}
	if len(insts) == 0 {
		fmt.Println("\n  No instruments yet.")
		fmt.Println("  Add one with `nestegg instruments add --principal 100000 --term 36`.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(insts))
	total := map[string]decimal.Decimal{}
	for _, inst := range insts {
		rate, eligible := projection.RateAt(env.schedule, inst, env.today)
		status := "earning"
		if !eligible {
			status = "first month"
		}
		rows = append(rows, []string{
			shortID(inst.ID),
			cli.Truncate(inst.Label, 20),
			cli.FormatMoney(inst.Principal, inst.Currency),
			inst.StartDate.String(),
			fmt.Sprintf("%dm", inst.TermMonths),
			cli.FormatRate(rate),
			projection.NextRenewal(inst, env.today).String(),
			status,
		})
		total[inst.Currency] = total[inst.Currency].Add(inst.Principal)
	}
	rows = append(rows, []string{"---"})
	for code, sum := range total {
		rows = append(rows, []string{"Total", "", cli.FormatMoney(sum, code)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Instruments (%s)", formatNumber(int64(len(insts)))),
		Headers: []string{"ID", "Label", "Principal", "Start", "Term", "Rate", "Renews", "Status"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runInstrumentsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	principal, err := parseDecimal("--principal", flagInstPrincipal)
	if err != nil {
		return err
	}
	start := env.today
	if flagInstStart != "" {
		if start, err = civil.ParseDate(flagInstStart); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}
	currency := flagInstCurrency
	if currency == "" {
		currency = env.ws.PlanCurrency
	}

	inst := model.Instrument{
		Label:      flagInstLabel,
		Principal:  principal,
		Currency:   currency,
		StartDate:  start,
		TermMonths: flagInstTerm,
	}
	if flagInstRate != "" {
		r, err := parseDecimal("--rate", flagInstRate)
		if err != nil {
			return err
		}
		inst.AnnualRatePercent = &r
	}

	inst, err = env.store.AddInstrument(inst)
	if err != nil {
		return err
	}
	env.invalidate(ctx)

	rate, _ := projection.RateAt(env.schedule, inst, inst.StartDate)
	fmt.Printf("  Added %s: %s at %s for %d months (id %s)\n",
		labelOr(inst.Label, "instrument"), cli.FormatMoney(inst.Principal, inst.Currency),
		cli.FormatRate(rate), inst.TermMonths, inst.ID)
	return nil
}

func runInstrumentsRm(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	insts, err := env.store.ListInstruments()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(insts))
	for _, inst := range insts {
		ids = append(ids, inst.ID)
	}
	id, err := matchID(ids, args[0])
	if err != nil {
		return err
	}
	if err := env.store.DeleteInstrument(id); err != nil {
		return err
	}
	env.invalidate(ctx)
	fmt.Printf("  Removed instrument %s\n", id)
	return nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// matchID resolves a full id from a unique prefix, as printed by the list
// commands. An unmatched prefix is returned as-is so the delete reports it.
func matchID(ids []string, prefix string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if len(prefix) >= 4 && strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return prefix, nil
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
