package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
)

func newPayoutCommand(open opener) *cobra.Command {
	payoutCmd := &cobra.Command{
		Use:   "payout",
		Short: "Payout cycle operations",
	}
	payoutCmd.AddCommand(newPayoutRunCommand(open), newPayoutFactorCommand(open))
	return payoutCmd
}

func newPayoutRunCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one payout cycle now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				report, err := rt.RunCycle(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "factor: %s\n", report.Factor)
				fmt.Fprintf(out, "plans updated: %d\n", report.PlansUpdated)
				fmt.Fprintf(out, "payouts: %d\n", report.Payouts)
				fmt.Fprintf(out, "plans expired: %d\n", report.PlansExpired)
				fmt.Fprintf(out, "total paid: %s\n", report.TotalPaid)
				return nil
			})
		},
	}
}

func newPayoutFactorCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "factor",
		Short: "Show the current payout factor and its inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				in, err := rt.Engine.CurrentFactor(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "factor: %s\n", in.Factor())
				fmt.Fprintf(out, "productive labour per day: %s\n", in.ProductiveLabour)
				fmt.Fprintf(out, "public means per day: %s\n", in.PublicMeans)
				fmt.Fprintf(out, "public resources per day: %s\n", in.PublicResources)
				fmt.Fprintf(out, "public labour per day: %s\n", in.PublicLabour)
				return nil
			})
		},
	}
}
