package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
)

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Milestone ladder with progress and estimated arrival",
	RunE:  runLadder,
}

func init() {
	rootCmd.AddCommand(ladderCmd)
}

func runLadder(cmd *cobra.Command, _ []string) error {
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

	res, err := env.ws.Estimates(ctx, st, progressLine("Projecting"))
	if err != nil {
		return err
	}
	if !flagQuiet && res.CacheHits > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %d of %d estimates from cache\n", res.CacheHits, len(res.Estimates))
	}

	cur := env.ws.PlanCurrency
	snap := st.Snapshot

	fmt.Println()
	fmt.Println(cli.RenderTitle("MILESTONE LADDER"))
	fmt.Println()

	rows := make([][]string, 0, len(snap.Ladder))
	for i, m := range snap.Ladder {
		marker := " "
		if m.ID == snap.CurrentLevelID {
			marker = "▸"
		}
		progress := "-"
		if p, ok := snap.ProgressFor(m.ID); ok {
			progress = cli.FormatPercent(p.Overall)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s %d. %s", marker, m.Order, cli.LevelName(m)),
			cli.FormatThreshold(m.MinSavings, cur),
			cli.FormatThreshold(m.MinMonthlyRevenue, cur),
			progress,
			cli.FormatArrival(res.Estimates[i], cli.Reached(snap, m.ID)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Level", "Savings", "Income/mo", "Progress", "Estimated"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
