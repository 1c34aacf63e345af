package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/statement"
)

func newCompanyCommand(open opener) *cobra.Command {
	companyCmd := &cobra.Command{
		Use:   "company",
		Short: "Company operations",
	}
	companyCmd.AddCommand(
		newCompanyCreateCommand(open),
		newCompanyInviteCommand(open),
		newCompanyWorkersCommand(open),
		newCompanyPayWorkerCommand(open),
		newStatementCommand(open, "company"),
	)
	return companyCmd
}

func newCompanyCreateCommand(open opener) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a company with its four accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				c, err := rt.Accounts.CreateCompany(ctx, name, email)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "id: %s\n", c.ID)
				fmt.Fprintf(out, "means account: %s\n", c.MeansAccount)
				fmt.Fprintf(out, "resources account: %s\n", c.ResourcesAccount)
				fmt.Fprintf(out, "labour account: %s\n", c.LabourAccount)
				fmt.Fprintf(out, "product account: %s\n", c.ProductAccount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")

	return cmd
}

func newMemberCommand(open opener) *cobra.Command {
	memberCmd := &cobra.Command{
		Use:   "member",
		Short: "Member operations",
	}

	var name, email string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a member with a personal account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				m, err := rt.Accounts.CreateMember(ctx, name, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id: %s\naccount: %s\n", m.ID, m.Account)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "member name (required)")
	_ = createCmd.MarkFlagRequired("name")
	createCmd.Flags().StringVar(&email, "email", "", "contact email")

	memberCmd.AddCommand(
		createCmd,
		newMemberInvitesCommand(open),
		newMemberAnswerInviteCommand(open),
		newMemberPurchasesCommand(open),
		newStatementCommand(open, "member"),
	)
	return memberCmd
}

// newStatementCommand lists the classified transactions of a company or
// member, newest first.
func newStatementCommand(open opener, holder string) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <" + holder + "-id>",
		Short: "Show the account statement of a " + holder,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holderID, err := id.Parse(holder, args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				var infos []statement.Info
				if holder == "company" {
					infos, err = rt.Statements.ForCompany(ctx, holderID)
				} else {
					infos, err = rt.Statements.ForMember(ctx, holderID)
				}
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s -> %s %s %q\n",
						info.Date.Format("2006-01-02"), info.Type, info.SenderName, info.ReceiverName,
						info.Volume, info.Purpose)
				}
				return nil
			})
		},
	}
}
