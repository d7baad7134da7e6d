package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
)

var (
	activatePlan      string
	activatePeriodEnd string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a user's import entitlement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cli.connect(); err != nil {
			return err
		}

		st, err := cli.entitlement.CheckStatus(cmd.Context(), userID, time.Now())
		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), st)

		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Grant a paid plan without going through billing",
	Long: `Start a basic or pro plan for the user with a fresh billing period.

Examples:
  tally activate -u 42 --plan pro
  tally activate -u 42 --plan basic --period-end 2026-04-01`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		plan, err := entitlement.ParsePlan(activatePlan)
		if err != nil {
			return err
		}

		now := time.Now()
		end := now.AddDate(0, 1, 0)

		if activatePeriodEnd != "" {
			end, err = time.Parse(time.DateOnly, activatePeriodEnd)
			if err != nil {
				return fmt.Errorf("invalid --period-end: %w", err)
			}
		}

		if err := cli.connect(); err != nil {
			return err
		}

		if err := cli.entitlement.PlanActivated(cmd.Context(), userID, entitlement.Activation{
			Plan:      plan,
			PeriodEnd: end,
		}, now); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now on %s until %s\n", userID, plan, end.Format(time.DateOnly))

		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Drop a user's paid plan",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cli.connect(); err != nil {
			return err
		}

		if err := cli.entitlement.PlanCanceledOrExpired(cmd.Context(), userID, time.Now()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s plan canceled\n", userID)

		return nil
	},
}

func printStatus(w io.Writer, st entitlement.Status) {
	fmt.Fprintf(w, "plan:       %s\n", st.Plan)
	fmt.Fprintf(w, "can import: %t\n", st.CanImport)
	fmt.Fprintf(w, "used:       %d / %d\n", st.Used, st.Limit)
	fmt.Fprintf(w, "remaining:  %d\n", st.Remaining)

	if st.PeriodEnd != nil {
		fmt.Fprintf(w, "renews:     %s\n", st.PeriodEnd.Format(time.DateOnly))
	}
}

func init() {
	activateCmd.Flags().StringVar(&activatePlan, "plan", "", "Plan to grant (basic|pro)")
	activateCmd.Flags().StringVar(&activatePeriodEnd, "period-end", "", "Period end date (YYYY-MM-DD, default: one month)")
	_ = activateCmd.MarkFlagRequired("plan")

	rootCmd.AddCommand(statusCmd, activateCmd, cancelCmd)
}
