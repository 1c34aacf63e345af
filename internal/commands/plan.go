package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/plan"
	"github.com/labourtime/labourtime/internal/pricing"
)

func newPlanCommand(open opener) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan operations",
	}
	planCmd.AddCommand(
		newPlanApproveCommand(open),
		newPlanActivateCommand(open),
		newPlanShowCommand(open),
		newPlanPriceCommand(open),
		newPlanListCommand(open),
		newPlanHideCommand(open),
		newPlanToggleAvailabilityCommand(open),
		newPlanBuyCommand(open),
	)
	return planCmd
}

func newPlanApproveCommand(open opener) *cobra.Command {
	var planner, labour, resources, means string
	var d plan.Draft

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a plan and grant its credit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if d.Planner, err = id.Parse("company", planner); err != nil {
				return err
			}
			costs := []struct {
				flag string
				src  string
				dst  *decimal.Decimal
			}{
				{"labour", labour, &d.Labour},
				{"resources", resources, &d.Resources},
				{"means", means, &d.Means},
			}
			for _, c := range costs {
				if *c.dst, err = decimal.NewFromString(c.src); err != nil {
					return fmt.Errorf("--%s: %w", c.flag, err)
				}
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Plans.Approve(ctx, d)
				if err != nil {
					return err
				}
				printPlan(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&planner, "planner", "", "planning company id (required)")
	_ = cmd.MarkFlagRequired("planner")
	cmd.Flags().StringVar(&labour, "labour", "0", "planned labour in hours")
	cmd.Flags().StringVar(&resources, "resources", "0", "planned liquid means in hours")
	cmd.Flags().StringVar(&means, "means", "0", "planned fixed means in hours")
	cmd.Flags().StringVar(&d.ProductName, "product", "", "product name (required)")
	cmd.Flags().StringVar(&d.ProductUnit, "unit", "", "product unit")
	cmd.Flags().IntVar(&d.ProductAmount, "amount", 0, "units produced")
	cmd.Flags().StringVar(&d.Description, "description", "", "plan description")
	cmd.Flags().IntVar(&d.Timeframe, "timeframe", 0, "timeframe in days")
	cmd.Flags().BoolVar(&d.IsPublicService, "public", false, "plan is a public service")

	return cmd
}

func newPlanActivateCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <plan-id>",
		Short: "Activate an approved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := id.Parse("plan", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Plans.Activate(ctx, planID)
				if err != nil {
					return err
				}
				printPlan(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newPlanShowCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := id.Parse("plan", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Plans.Get(ctx, planID)
				if err != nil {
					return err
				}
				printPlan(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newPlanPriceCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "price <plan-id>",
		Short: "Show the per-unit price of a plan's product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := id.Parse("plan", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Plans.Get(ctx, planID)
				if err != nil {
					return err
				}
				price, err := rt.Pricing.Price(ctx, planID)
				if err != nil {
					return err
				}
				plans, err := rt.Pricing.CooperatingPlans(ctx, planID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "price: %s\n", price)
				fmt.Fprintf(out, "individual price: %s\n", pricing.PricePerUnit(p))
				fmt.Fprintf(out, "expected sales: %s\n", pricing.ExpectedSalesValue(p))
				fmt.Fprintf(out, "cooperating plans: %d\n", len(plans))
				return nil
			})
		},
	}
}

func newPlanListCommand(open opener) *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every plan, or the visible plans of one company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := func(ctx context.Context, rt *app.Runtime) ([]model.Plan, error) {
				return rt.Plans.All(ctx)
			}
			if company != "" {
				companyID, err := id.Parse("company", company)
				if err != nil {
					return err
				}
				list = func(ctx context.Context, rt *app.Runtime) ([]model.Plan, error) {
					return rt.Plans.PlansOfCompany(ctx, companyID)
				}
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				plans, err := list(ctx, rt)
				if err != nil {
					return err
				}
				for _, p := range plans {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s active=%t expired=%t available=%t payouts=%d\n",
						p.ID, p.ProductName, p.IsActive, p.Expired, p.IsAvailable, p.PayoutCount)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "only this planning company's visible plans")

	return cmd
}

func newPlanHideCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <plan-id>",
		Short: "Hide a plan from its company's listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := id.Parse("plan", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				if _, err := rt.Plans.Hide(ctx, planID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "hidden")
				return nil
			})
		},
	}
}

func newPlanToggleAvailabilityCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-availability <plan-id>",
		Short: "Flip whether a plan's product is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := id.Parse("plan", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Plans.ToggleAvailability(ctx, planID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "available: %t\n", p.IsAvailable)
				return nil
			})
		},
	}
}

func newPlanBuyCommand(open opener) *cobra.Command {
	var member, planArg string
	var amount int

	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Pay for units of a plan's product from a member's account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buyer, err := id.Parse("member", member)
			if err != nil {
				return err
			}
			planID, err := id.Parse("plan", planArg)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				purchase, err := rt.Pricing.PayConsumerProduct(ctx, buyer, planID, amount)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "purchase: %s\n", purchase.ID)
				fmt.Fprintf(out, "price per unit: %s\n", purchase.PricePerUnit)
				fmt.Fprintf(out, "paid: %s\n", purchase.Transaction.AmountSent)
				fmt.Fprintf(out, "planner received: %s\n", purchase.Transaction.AmountReceived)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&member, "member", "", "buying member id (required)")
	_ = cmd.MarkFlagRequired("member")
	cmd.Flags().StringVar(&planArg, "plan", "", "plan id (required)")
	_ = cmd.MarkFlagRequired("plan")
	cmd.Flags().IntVar(&amount, "amount", 1, "units to buy")

	return cmd
}

func printPlan(w io.Writer, p model.Plan) {
	fmt.Fprintf(w, "id: %s\n", p.ID)
	fmt.Fprintf(w, "planner: %s\n", p.Planner)
	fmt.Fprintf(w, "product: %s (%d %s)\n", p.ProductName, p.ProductAmount, p.ProductUnit)
	fmt.Fprintf(w, "costs: labour %s, resources %s, means %s\n", p.Costs.Labour, p.Costs.Resources, p.Costs.Means)
	fmt.Fprintf(w, "timeframe: %d days\n", p.Timeframe)
	fmt.Fprintf(w, "public service: %t\n", p.IsPublicService)
	fmt.Fprintf(w, "active: %t\n", p.IsActive)
	if p.ActivationDate != nil {
		fmt.Fprintf(w, "activated: %s\n", p.ActivationDate.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "expired: %t\n", p.Expired)
	fmt.Fprintf(w, "active days: %d\n", p.ActiveDays)
	fmt.Fprintf(w, "payouts: %d\n", p.PayoutCount)
	if p.Cooperation != nil {
		fmt.Fprintf(w, "cooperation: %s\n", *p.Cooperation)
	}
}
