package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/cooperation"
	"github.com/labourtime/labourtime/internal/id"
)

func newCooperationCommand(open opener) *cobra.Command {
	coopCmd := &cobra.Command{
		Use:   "cooperation",
		Short: "Cooperation operations",
	}
	coopCmd.AddCommand(
		newCooperationCreateCommand(open),
		newCooperationRequestCommand(open),
		newCooperationAcceptCommand(open),
		newCooperationDenyCommand(open),
		newCooperationCancelCommand(open),
		newCooperationEndCommand(open),
		newCooperationShowCommand(open),
		newCooperationRequestsCommand(open),
		newCooperationCoordinatedCommand(open),
		newCooperationListCommand(open),
	)
	return coopCmd
}

func newCooperationCreateCommand(open opener) *cobra.Command {
	var coordinator, name, definition string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cooperation coordinated by a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := id.Parse("company", coordinator)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				c, err := rt.Cooperations.Create(ctx, cooperation.CreateRequest{
					Coordinator: coord,
					Name:        name,
					Definition:  definition,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", c.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&coordinator, "coordinator", "", "coordinating company id (required)")
	_ = cmd.MarkFlagRequired("coordinator")
	cmd.Flags().StringVar(&name, "name", "", "cooperation name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&definition, "definition", "", "what the cooperating plans produce")

	return cmd
}

// linkFlags are the ids every request and accept call names.
type linkFlags struct {
	requester, plan, cooperation string
}

func (f *linkFlags) register(cmd *cobra.Command, requesterHelp string) {
	cmd.Flags().StringVar(&f.requester, "requester", "", requesterHelp)
	cmd.Flags().StringVar(&f.plan, "plan", "", "plan id (required)")
	cmd.Flags().StringVar(&f.cooperation, "cooperation", "", "cooperation id (required)")
	for _, name := range []string{"requester", "plan", "cooperation"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *linkFlags) parse() (requester, planID, coopID uuid.UUID, err error) {
	if requester, err = id.Parse("requester", f.requester); err != nil {
		return
	}
	if planID, err = id.Parse("plan", f.plan); err != nil {
		return
	}
	coopID, err = id.Parse("cooperation", f.cooperation)
	return
}

func newCooperationRequestCommand(open opener) *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Ask for a plan to join a cooperation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requester, planID, coopID, err := flags.parse()
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Cooperations.Request(ctx, cooperation.RequestCooperationRequest{
					Requester:   requester,
					Plan:        planID,
					Cooperation: coopID,
				})
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("request rejected: %s", resp.Rejection)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "requested; coordinator: %s <%s>\n", resp.CoordinatorName, resp.CoordinatorEmail)
				return nil
			})
		},
	}
	flags.register(cmd, "planning company id (required)")

	return cmd
}

func newCooperationAcceptCommand(open opener) *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a plan's request to join a cooperation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requester, planID, coopID, err := flags.parse()
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Cooperations.Accept(ctx, cooperation.AcceptCooperationRequest{
					Requester:   requester,
					Plan:        planID,
					Cooperation: coopID,
				})
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("accept rejected: %s", resp.Rejection)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "accepted")
				return nil
			})
		},
	}
	flags.register(cmd, "coordinating company id (required)")

	return cmd
}

func newCooperationDenyCommand(open opener) *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "deny",
		Short: "Deny a plan's request to join a cooperation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requester, planID, coopID, err := flags.parse()
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Cooperations.Deny(ctx, cooperation.DenyCooperationRequest{
					Requester:   requester,
					Plan:        planID,
					Cooperation: coopID,
				})
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("deny rejected: %s", resp.Rejection)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "denied")
				return nil
			})
		},
	}
	flags.register(cmd, "coordinating company id (required)")

	return cmd
}

func newCooperationCancelCommand(open opener) *cobra.Command {
	var requester, planArg string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Withdraw a plan's pending cooperation request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			planner, err := id.Parse("requester", requester)
			if err != nil {
				return err
			}
			planID, err := id.Parse("plan", planArg)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				cancelled, err := rt.Cooperations.CancelRequest(ctx, planner, planID)
				if err != nil {
					return err
				}
				if !cancelled {
					return fmt.Errorf("plan %s has no request of yours to cancel", planID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&requester, "requester", "", "planning company id (required)")
	_ = cmd.MarkFlagRequired("requester")
	cmd.Flags().StringVar(&planArg, "plan", "", "plan id (required)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newCooperationEndCommand(open opener) *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Remove a plan from its cooperation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requester, planID, coopID, err := flags.parse()
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Cooperations.End(ctx, cooperation.EndCooperationRequest{
					Requester:   requester,
					Plan:        planID,
					Cooperation: coopID,
				})
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("end rejected: %s", resp.Rejection)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ended")
				return nil
			})
		},
	}
	flags.register(cmd, "planner or coordinator company id (required)")

	return cmd
}

func newCooperationShowCommand(open opener) *cobra.Command {
	var requester string

	cmd := &cobra.Command{
		Use:   "show <cooperation-id>",
		Short: "Show a cooperation, its price and its plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coopID, err := id.Parse("cooperation", args[0])
			if err != nil {
				return err
			}
			var viewer uuid.UUID
			if requester != "" {
				if viewer, err = id.Parse("requester", requester); err != nil {
					return err
				}
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				sum, err := rt.Cooperations.Summary(ctx, coopID, viewer)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "name: %s\n", sum.Name)
				fmt.Fprintf(out, "coordinator: %s (%s)\n", sum.CoordinatorName, sum.Coordinator)
				fmt.Fprintf(out, "coordinated by you: %t\n", sum.RequesterIsCoordinator)
				fmt.Fprintf(out, "price: %s\n", sum.CooperationPrice)
				fmt.Fprintf(out, "plans: %d\n", len(sum.Plans))
				for _, p := range sum.Plans {
					fmt.Fprintf(out, "  %s %s individual price %s\n", p.ID, p.ProductName, p.IndividualPrice)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&requester, "requester", "", "company viewing the cooperation")

	return cmd
}

func newCooperationRequestsCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "requests <coordinator-id>",
		Short: "List pending requests to the cooperations a company coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, err := id.Parse("company", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				reqs, err := rt.Cooperations.InboundRequests(ctx, coordinator)
				if err != nil {
					return err
				}
				for _, r := range reqs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s wants to join %s (%s)\n",
						r.Plan.ID, r.Plan.ProductName, r.Cooperation.Name, r.Cooperation.ID)
				}
				return nil
			})
		},
	}
}

func newCooperationCoordinatedCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "coordinated <company-id>",
		Short: "List the cooperations a company coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := id.Parse("company", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				coops, err := rt.Cooperations.CoordinatedBy(ctx, company)
				if err != nil {
					return err
				}
				for _, c := range coops {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s plans=%d\n", c.Cooperation.ID, c.Cooperation.Name, c.PlanCount)
				}
				return nil
			})
		},
	}
}

func newCooperationListCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every cooperation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				coops, err := rt.Cooperations.All(ctx)
				if err != nil {
					return err
				}
				for _, c := range coops {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s coordinator=%s\n", c.ID, c.Name, c.Coordinator)
				}
				return nil
			})
		},
	}
}
