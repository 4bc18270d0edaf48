package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/pipeline"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Current milestone, runway and progress toward the next tier",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
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
	if isEmpty(st.Records) {
		fmt.Println()
		fmt.Println("  " + errNoRecords.Error())
		fmt.Println()
		return nil
	}

	renderSnapshot(st, env.ws.PlanCurrency)
	return nil
}

func isEmpty(rec model.Records) bool {
	return len(rec.Instruments) == 0 && len(rec.Accounts) == 0 && len(rec.Expenses) == 0
}

func renderSnapshot(st *pipeline.State, cur string) {
	snap := st.Snapshot

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("NESTEGG  %s", st.Today)))
	fmt.Println()

	lines := []cli.KV{
		{Key: "Total savings", Value: cli.FormatMoney(snap.TotalSavings, cur)},
		{Key: "Passive income", Value: cli.FormatMoney(snap.MonthlyPassiveIncome, cur) + "/mo"},
		{Key: "Expenses", Value: cli.FormatMoney(snap.EstimatedMonthlyExpenses, cur) + "/mo"},
	}
	if snap.MonthsOfExpensesSaved != nil {
		lines = append(lines, cli.KV{Key: "Runway", Value: snap.MonthsOfExpensesSaved.StringFixed(1) + " months"})
	}
	if snap.CoveragePercent != nil {
		lines = append(lines, cli.KV{Key: "Coverage", Value: snap.CoveragePercent.StringFixed(1) + "% of expenses"})
	}
	if st.FX.Valid() {
		lines = append(lines, cli.KV{Key: "FX", Value: st.FX.String()})
	}
	if len(st.Unconverted) > 0 {
		lines = append(lines, cli.KV{Key: "FX", Value: "missing, totals are partial", Warn: true})
	}
	fmt.Print(cli.RenderSummary("", lines))
	fmt.Println()

	current, _ := snap.Ladder.Find(snap.CurrentLevelID)
	status := "reached"
	if !snap.CurrentAchieved {
		status = "not yet reached"
	}
	fmt.Printf("  Current level: %s (%s)\n", cli.LevelName(current), status)
	if current.Narrative != "" {
		fmt.Printf("  %s\n", current.Narrative)
	}

	if next, ok := snap.Ladder.Find(snap.NextLevelID); ok {
		fmt.Printf("  Next level:    %s\n", cli.LevelName(next))
		if p, ok := snap.ProgressFor(next.ID); ok {
			fmt.Println()
			fmt.Print(renderProgress(next, p, cur))
		}
	} else if snap.CurrentAchieved {
		fmt.Println("  Top of the ladder.")
	}

	if len(st.Income) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(st.Income))
		for _, s := range st.Income {
			renewal := "-"
			if !s.NextRenewal.IsZero() {
				renewal = s.NextRenewal.String()
			}
			rows = append(rows, []string{
				cli.Truncate(s.Label, 24),
				cli.FormatMoney(s.Principal, ""),
				cli.FormatRate(s.Rate),
				cli.FormatMoney(s.MonthlyIncome, ""),
				s.SharePercent.StringFixed(1) + "%",
				renewal,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Passive income by instrument (" + cur + ")",
			Headers: []string{"Instrument", "Principal", "Rate", "Monthly", "Share", "Renews"},
			Rows:    rows,
		}))
	}
	fmt.Println()
}

func renderProgress(m model.Milestone, p model.LevelProgress, cur string) string {
	var lines []cli.KV
	if m.MinSavings != nil {
		lines = append(lines, cli.KV{
			Key:   "Savings",
			Value: cli.RenderProgressBar(p.Savings, 24) + "  of " + cli.FormatMoney(*m.MinSavings, cur),
		})
	}
	if m.MinMonthlyRevenue != nil {
		lines = append(lines, cli.KV{
			Key:   "Income",
			Value: cli.RenderProgressBar(p.Revenue, 24) + "  of " + cli.FormatMoney(*m.MinMonthlyRevenue, cur) + "/mo",
		})
	}
	return cli.RenderSummary("Progress to "+cli.LevelName(m), lines)
}
