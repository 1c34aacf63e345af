package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/labourtime/labourtime/internal/app"
	"github.com/labourtime/labourtime/internal/config"
)

func newInitCommand() *cobra.Command {
	var format, driver, dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new labourtime installation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, format, driver, dsn)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "config file format (yaml or toml)")
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN (default: labourtime.db in the directory)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, format, driver, dsn string) error {
	if format != "yaml" && format != "toml" {
		return fmt.Errorf("unknown config format %q", format)
	}
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory logs: %w", err)
	}

	path := filepath.Join(dir, "labourtime."+format)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := config.Default()
	cfg.Database.Driver = driver
	cfg.Database.DSN = dsn
	if dsn == "" {
		cfg.Database.DSN = filepath.Join(dir, "labourtime.db")
	}
	cfg.CycleLog.Path = filepath.Join(dir, cfg.CycleLog.Path)

	// Creates the schema and the social accounting.
	rt, err := app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()
	social, err := rt.Accounts.SocialAccounting(cmd.Context())
	if err != nil {
		return fmt.Errorf("creating social accounting: %w", err)
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized labourtime at %s\n", dir)
	fmt.Fprintf(out, "config: %s\n", path)
	fmt.Fprintf(out, "social accounting account: %s\n", social.Account)
	return nil
}
