package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
)

func newStatsCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print economy-wide statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				s, err := rt.Stats.Get(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			})
		},
	}
}
