package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
)

var flagRecordCurrency string

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage cash balances",
	RunE:  runAccountsList,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cash accounts",
	RunE:  runAccountsList,
}

var accountsSetCmd = &cobra.Command{
	Use:   "set <name> <balance>",
	Short: "Create an account or update its balance",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsSet,
}

var accountsRmCmd = &cobra.Command{
	Use:   "rm <name|id>",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsRm,
}

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Manage monthly expenses",
	RunE:  runExpensesList,
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monthly expenses",
	RunE:  runExpensesList,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add <label> <monthly>",
	Short: "Add a recurring monthly expense",
	Args:  cobra.ExactArgs(2),
	RunE:  runExpensesAdd,
}

var expensesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesRm,
}

func init() {
	accountsSetCmd.Flags().StringVar(&flagRecordCurrency, "currency", "", "Currency code (default: plan currency)")
	expensesAddCmd.Flags().StringVar(&flagRecordCurrency, "currency", "", "Currency code (default: plan currency)")

	accountsCmd.AddCommand(accountsListCmd, accountsSetCmd, accountsRmCmd)
	expensesCmd.AddCommand(expensesListCmd, expensesAddCmd, expensesRmCmd)
	rootCmd.AddCommand(accountsCmd, expensesCmd)
}

func recordCurrency(env *runtimeEnv) string {
	if flagRecordCurrency != "" {
		return flagRecordCurrency
	}
	return env.ws.PlanCurrency
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmdContext(cmd))
	if err != nil {
		return err
	}
	defer env.Close()

	accounts, err := env.store.ListAccounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts yet. Add one with `nestegg accounts set checking 25000`.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		asOf := "-"
		if !a.AsOf.IsZero() {
			asOf = a.AsOf.String()
		}
		rows = append(rows, []string{a.Name, cli.FormatMoney(a.Balance, a.Currency), asOf, shortID(a.ID)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Accounts",
		Headers: []string{"Name", "Balance", "As of", "ID"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runAccountsSet(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	balance, err := parseDecimal("balance", args[1])
	if err != nil {
		return err
	}
	a, err := env.store.UpsertAccount(model.Account{
		Name:     args[0],
		Balance:  balance,
		Currency: recordCurrency(env),
		AsOf:     env.today,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  %s: %s\n", a.Name, cli.FormatMoney(a.Balance, a.Currency))
	return nil
}

func runAccountsRm(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.store.DeleteAccount(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Removed account %s\n", args[0])
	return nil
}

func runExpensesList(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmdContext(cmd))
	if err != nil {
		return err
	}
	defer env.Close()

	expenses, err := env.store.ListExpenses()
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses yet. Add one with `nestegg expenses add rent 6000`.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(expenses)+2)
	totals := map[string]decimal.Decimal{}
	for _, e := range expenses {
		rows = append(rows, []string{e.Label, cli.FormatMoney(e.Monthly, e.Currency), shortID(e.ID)})
		totals[e.Currency] = totals[e.Currency].Add(e.Monthly)
	}
	rows = append(rows, []string{"---"})
	for code, sum := range totals {
		rows = append(rows, []string{"Total", cli.FormatMoney(sum, code), ""})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly expenses",
		Headers: []string{"Label", "Monthly", "ID"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runExpensesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	monthly, err := parseDecimal("monthly", args[1])
	if err != nil {
		return err
	}
	e, err := env.store.AddExpense(model.Expense{Label: args[0], Monthly: monthly, Currency: recordCurrency(env)})
	if err != nil {
		return err
	}
	fmt.Printf("  Added %s: %s/mo (id %s)\n", e.Label, cli.FormatMoney(e.Monthly, e.Currency), shortID(e.ID))
	return nil
}

func runExpensesRm(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	expenses, err := env.store.ListExpenses()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	id, err := matchID(ids, args[0])
	if err != nil {
		return err
	}
	if err := env.store.DeleteExpense(id); err != nil {
		return err
	}
	fmt.Printf("  Removed expense %s\n", id)
	return nil
}
