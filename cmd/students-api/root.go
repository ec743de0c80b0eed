package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-students-cache/internal/config"
	"github.com/goliatone/go-students-cache/internal/logging"
	"github.com/goliatone/go-students-cache/pkg/di"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students-api [sub-command]",
		Short: "Student records API with a cache-aside layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(configFlag, "", "path to the configuration YAML file (default $CONFIG_PATH)")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// setup loads the configuration named by the --config flag and builds the container.
func setup(cmd *cobra.Command) (*di.Container, *slog.Logger, error) {
	flagValue, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(config.ResolvePath(flagValue))
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Env, cmd.OutOrStdout())
	container, err := di.NewContainer(*cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build container: %w", err)
	}
	return container, logger, nil
}
