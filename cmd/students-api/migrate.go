package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema migrated",
				slog.String("driver", container.Config().Storage.Driver))
			return nil
		},
	}
}
