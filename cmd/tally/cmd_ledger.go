package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var (
	reconcileAsOf string
	totalsMonth   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cli.connect(); err != nil {
			return err
		}

		if err := database.Migrate(cmd.Context(), cli.db); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Materialize missing recurring occurrences",
	Long: `Insert every missing occurrence of the user's recurring series up to the
end of the current month, or of the month containing --as-of.

Examples:
  tally reconcile -u 42
  tally reconcile -u 42 --as-of 2026-03-01`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asOf, err := parseAsOf(reconcileAsOf)
		if err != nil {
			return err
		}

		if err := cli.connect(); err != nil {
			return err
		}

		n, err := cli.projector.Reconcile(cmd.Context(), userID, asOf)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d occurrence(s) for %s\n", n, userID)

		return nil
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show spending per category for a month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		month := totalsMonth
		if month == "" {
			month = time.Now().Format("2006-01")
		}

		start, end, err := ledger.MonthRange(month)
		if err != nil {
			return err
		}

		if err := cli.connect(); err != nil {
			return err
		}

		totals, err := cli.ledger.CategoryTotals(cmd.Context(), userID, ledger.ListFilter{StartDate: start, EndDate: end})
		if err != nil {
			return err
		}

		if len(totals) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no spending recorded in %s\n", month)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), totalsTable(totals))

		return nil
	},
}

func totalsTable(totals []ledger.CategoryTotal) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Spent").
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 1 {
				return lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
			}

			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, ct := range totals {
		name := ct.Category
		if c, ok := category.Resolve(ct.Category); ok {
			name = c.Icon + " " + c.Name
		}

		t.Row(name, ct.Total.StringFixed(2))
	}

	return t.Render()
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileAsOf, "as-of", "", "Reconcile as of this date (YYYY-MM-DD)")
	totalsCmd.Flags().StringVar(&totalsMonth, "month", "", "Month to summarize (YYYY-MM, default: current)")

	rootCmd.AddCommand(migrateCmd, reconcileCmd, totalsCmd)
}
