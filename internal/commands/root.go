package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/buildinfo"
	"github.com/labourtime/labourtime/internal/config"
)

const defaultConfigPath = "labourtime.yaml"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "labourtime",
		Short:   "Labour-time accounting for planned production",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to labourtime.yaml or labourtime.toml")

	open := func(cmd *cobra.Command) (*app.Runtime, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newCompanyCommand(open),
		newMemberCommand(open),
		newPlanCommand(open),
		newCooperationCommand(open),
		newPayoutCommand(open),
		newAccountCommand(open),
		newLedgerCommand(open),
		newStatsCommand(open),
		newServeCommand(open),
	)

	return rootCmd
}

// opener builds the runtime from the --config flag.
type opener func(cmd *cobra.Command) (*app.Runtime, error)

// withRuntime opens the runtime, runs fn and closes the runtime again.
func withRuntime(cmd *cobra.Command, open opener, fn func(ctx context.Context, rt *app.Runtime) error) (err error) {
	rt, err := open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()
	return fn(cmd.Context(), rt)
}
