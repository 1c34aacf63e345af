package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/workers"
)

func newCompanyInviteCommand(open opener) *cobra.Command {
	var company, member string

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a member to work at a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := id.Parse("company", company)
			if err != nil {
				return err
			}
			memberID, err := id.Parse("member", member)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Workers.Invite(ctx, companyID, memberID)
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("invite rejected: %s", resp.Rejection)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invite: %s\n", resp.Invite.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "inviting company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&member, "member", "", "invited member id (required)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func newCompanyWorkersCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "workers <company-id>",
		Short: "List the members working at a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := id.Parse("company", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				staff, err := rt.Workers.Workers(ctx, companyID)
				if err != nil {
					return err
				}
				for _, m := range staff {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\n", m.ID, m.Name, m.Email)
				}
				return nil
			})
		},
	}
}

func newCompanyPayWorkerCommand(open opener) *cobra.Command {
	var company, worker, amount string

	cmd := &cobra.Command{
		Use:   "pay-worker",
		Short: "Transfer work certificates from a company's labour account to a worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req workers.PayRequest
			var err error
			if req.Company, err = id.Parse("company", company); err != nil {
				return err
			}
			if req.Worker, err = id.Parse("worker", worker); err != nil {
				return err
			}
			if req.Amount, err = decimal.NewFromString(amount); err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Workers.PayWorker(ctx, req)
				if err != nil {
					return err
				}
				if resp.IsRejected() {
					return fmt.Errorf("payment rejected: %s", resp.Rejection)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "transaction: %s\n", resp.Transaction.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "paying company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&worker, "worker", "", "member id of the worker (required)")
	_ = cmd.MarkFlagRequired("worker")
	cmd.Flags().StringVar(&amount, "amount", "", "hours to transfer (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newMemberInvitesCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "invites <member-id>",
		Short: "List a member's open work invites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := id.Parse("member", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				invites, err := rt.Workers.Invites(ctx, memberID)
				if err != nil {
					return err
				}
				for _, inv := range invites {
					c, err := rt.Accounts.Company(ctx, inv.Company)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s from %s (%s)\n", inv.ID, c.Name, c.ID)
				}
				return nil
			})
		},
	}
}

func newMemberAnswerInviteCommand(open opener) *cobra.Command {
	var invite, member string
	var accept, reject bool

	cmd := &cobra.Command{
		Use:   "answer-invite",
		Short: "Accept or reject a work invite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := workers.AnswerRequest{Accept: accept}
			var err error
			if req.Invite, err = id.Parse("invite", invite); err != nil {
				return err
			}
			if req.Member, err = id.Parse("member", member); err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				resp, err := rt.Workers.Answer(ctx, req)
				if err != nil {
					return err
				}
				if !resp.IsSuccess() {
					return fmt.Errorf("answer failed: %s", resp.Failure)
				}
				verb := "rejected"
				if resp.Accepted {
					verb = "accepted"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s; company: %s\n", verb, resp.CompanyName)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&invite, "invite", "", "invite id (required)")
	_ = cmd.MarkFlagRequired("invite")
	cmd.Flags().StringVar(&member, "member", "", "invited member id (required)")
	_ = cmd.MarkFlagRequired("member")
	cmd.Flags().BoolVar(&accept, "accept", false, "accept the invite")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the invite")
	cmd.MarkFlagsMutuallyExclusive("accept", "reject")
	cmd.MarkFlagsOneRequired("accept", "reject")

	return cmd
}

func newMemberPurchasesCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "purchases <member-id>",
		Short: "List a member's purchases, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := id.Parse("member", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				if _, err := rt.Accounts.Member(ctx, memberID); err != nil {
					return err
				}
				purchases, err := rt.Pricing.Purchases(ctx, memberID)
				if err != nil {
					return err
				}
				for _, p := range purchases {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s x%d at %s = %s (%s)\n",
						p.Date.Format("2006-01-02"), p.ProductName, p.Amount, p.PricePerUnit, p.PriceTotal, p.Purpose)
				}
				return nil
			})
		},
	}
}
