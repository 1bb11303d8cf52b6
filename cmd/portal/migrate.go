package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reloop/portal/internal/config"
	"github.com/reloop/portal/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the scan journal schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadDatabase(opts.configPath)
				if err != nil {
					return err
				}

				// Open applies pending migrations.
				database, err := db.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer database.Close()

				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadDatabase(opts.configPath)
				if err != nil {
					return err
				}

				database, err := db.Connect(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer database.Close()

				version, err := db.RollbackLast(cmd.Context(), database)
				if err != nil {
					return err
				}
				if version == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no migration to roll back")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migration %04d rolled back\n", version)
				return nil
			},
		},
	)
	return cmd
}
