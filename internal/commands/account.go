package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
)

func newAccountCommand(open opener) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(
		newAccountBalanceCommand(open),
		newAccountListCommand(open),
		newAccountTransactionsCommand(open),
		newAccountVerifyCommand(open),
	)
	return accountCmd
}

func newAccountBalanceCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := id.Parse("account", args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				if _, err := rt.Accounts.Account(ctx, accountID); err != nil {
					return err
				}
				balance, err := rt.Ledger.Balance(ctx, accountID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "balance: %s\n", balance)
				return nil
			})
		},
	}
}

func newAccountListCommand(open opener) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k := model.AccountKind(kind)
			if kind != "" && !k.Valid() {
				return fmt.Errorf("unknown account kind %q", kind)
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				var (
					list []model.Account
					err  error
				)
				if kind == "" {
					list, err = rt.Accounts.All(ctx)
				} else {
					list, err = rt.Accounts.ByKind(ctx, k)
				}
				if err != nil {
					return err
				}
				return accounts.WriteAccounts(cmd.OutOrStdout(), list)
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list accounts of this kind")

	return cmd
}

func newAccountTransactionsCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <account-id>...",
		Short: "Export the transactions touching the given accounts as CSV, newest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, a := range args {
				accountID, err := id.Parse("account", a)
				if err != nil {
					return err
				}
				ids = append(ids, accountID)
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				for _, accountID := range ids {
					if _, err := rt.Accounts.Account(ctx, accountID); err != nil {
						return err
					}
				}
				txs, err := rt.Ledger.AccountTransactions(ctx, ids...)
				if err != nil {
					return err
				}
				return ledger.WriteCSV(cmd.OutOrStdout(), txs)
			})
		},
	}
}

func newAccountVerifyCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <accounts.csv>",
		Short: "Check an account list written by 'account list' against the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exported, err := readFile(args[0], accounts.ReadAccounts)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				stored, err := rt.Accounts.All(ctx)
				if err != nil {
					return err
				}
				if diff := accounts.Diff(exported, stored); len(diff) > 0 {
					return fmt.Errorf("%d of %d accounts do not match, first: %s", len(diff), len(exported), diff[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts match\n", len(exported))
				return nil
			})
		},
	}
}

func newLedgerCommand(open opener) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				txs, err := rt.Ledger.All(ctx)
				if err != nil {
					return err
				}
				if output == "" {
					return ledger.WriteCSV(cmd.OutOrStdout(), txs)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				if err := ledger.WriteCSV(f, txs); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d transactions to %s\n", len(txs), output)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	verifyCmd := &cobra.Command{
		Use:   "verify <ledger.csv>",
		Short: "Check an exported ledger against the stored transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exported, err := readFile(args[0], ledger.ReadCSV)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				stored, err := rt.Ledger.All(ctx)
				if err != nil {
					return err
				}
				d := ledger.Compare(exported, stored)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "exported: %d\n", len(exported))
				fmt.Fprintf(out, "missing: %d\n", len(d.Missing))
				fmt.Fprintf(out, "changed: %d\n", len(d.Changed))
				fmt.Fprintf(out, "booked since export: %d\n", len(d.Unexported))
				if len(d.Missing) > 0 || len(d.Changed) > 0 {
					return errors.New("exported ledger does not match the store")
				}
				return nil
			})
		},
	}

	ledgerCmd.AddCommand(exportCmd, verifyCmd)
	return ledgerCmd
}

// readFile parses the named file with read.
func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
