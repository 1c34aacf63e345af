package commands

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
)

func newServeCommand(open opener) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run payout cycles on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return withRuntime(cmd, open, func(ctx context.Context, rt *app.Runtime) error {
				listen := addr
				if listen == "" {
					listen = rt.Config.Server.Addr
				}
				l, err := net.Listen("tcp", listen)
				if err != nil {
					return fmt.Errorf("listening on %s: %w", listen, err)
				}
				return rt.Serve(ctx, l)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
