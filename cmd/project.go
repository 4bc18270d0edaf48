package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projection"
)

var flagProjectMonths bool

var projectCmd = &cobra.Command{
	Use:   "project <level-id>",
	Short: "Year-by-year projection until a milestone is reached",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().BoolVar(&flagProjectMonths, "months", false, "Show month rows under each year")
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := env.state(ctx)
	if err != nil {
		return err
	}

	m, rows, err := env.ws.Project(ctx, st, args[0])
	if errors.Is(err, model.ErrUnknownLevel) {
		ids := make([]string, 0, len(env.ws.Ladder))
		for _, l := range env.ws.Ladder.Sorted() {
			ids = append(ids, l.ID)
		}
		return fmt.Errorf("%w (levels: %v)", err, ids)
	}
	if err != nil {
		return err
	}

	cur := env.ws.PlanCurrency
	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTION  " + cli.LevelName(m)))
	fmt.Println()

	if len(rows) == 0 {
		fmt.Println("  No instruments take part in the projection.")
		fmt.Println("  Add one with `nestegg instruments add`.")
		fmt.Println()
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Year", "Age", "Start", "Deposited", "Revenue", "End", "Rate", "Carry"},
		Rows:    projectionRows(rows, flagProjectMonths),
	}))

	est := projection.Estimate(m, rows)
	fmt.Println()
	ends := make([]float64, 0, len(rows))
	for _, r := range rows {
		ends = append(ends, r.EndBalance.InexactFloat64())
	}
	fmt.Printf("  Balance  %s\n", cli.RenderSparkline(ends))
	fmt.Printf("  Status   %s", cli.RenderStatus(est.Reached))
	if est.Reached {
		fmt.Printf(" in %d, %s from now", est.Year, cli.FormatMonths(est.MonthsAway))
	}
	fmt.Println()
	if last, ok := model.LastMonth(rows); ok {
		fmt.Printf("  Final    %s, %s/mo revenue\n",
			cli.FormatMoney(last.EndBalance, cur), cli.FormatMoney(last.Revenue, cur))
	}
	fmt.Println()
	return nil
}

func projectionRows(rows []model.YearRow, months bool) [][]string {
	out := make([][]string, 0, len(rows))
	for i, y := range rows {
		age := "-"
		if y.Age > 0 {
			age = strconv.Itoa(y.Age)
		}
		out = append(out, []string{
			strconv.Itoa(y.Year),
			age,
			cli.FormatMoney(y.StartBalance, ""),
			cli.FormatMoney(y.DepositedThisYear, ""),
			cli.FormatMoney(y.Revenue, ""),
			cli.FormatMoney(y.EndBalance, ""),
			cli.FormatRate(y.EffectiveRate),
			cli.FormatMoney(y.UninvestedCarry, ""),
		})
		if !months {
			continue
		}
		for _, m := range y.Months {
			out = append(out, []string{
				"  " + m.Label,
				"",
				cli.FormatMoney(m.StartBalance, ""),
				cli.FormatMoney(m.Deposited, ""),
				cli.FormatMoney(m.Revenue, ""),
				cli.FormatMoney(m.EndBalance, ""),
				cli.FormatRate(m.EffectiveRate),
				cli.FormatMoney(m.UninvestedCarry, ""),
			})
		}
		if i < len(rows)-1 && len(y.Months) > 0 {
			out = append(out, []string{"---"})
		}
	}
	return out
}
