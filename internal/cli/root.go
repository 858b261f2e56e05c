// Package cli implements the crm-api command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slgMitch/fidelity-interview/internal/config"
	"github.com/slgMitch/fidelity-interview/internal/database"
	"github.com/slgMitch/fidelity-interview/internal/logging"
	"github.com/slgMitch/fidelity-interview/internal/server"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd returns the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "crm-api",
		Short:         "GraphQL API over accounts and contacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $CRM_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newQueryCmd(opts))

	return rootCmd
}

// load reads the configuration and builds a logger writing to the
// command's stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewWithService(server.ServiceName, cfg.LogLevel)
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}

// openDatabase connects and, when enabled, brings the schema up to date.
func openDatabase(ctx context.Context, cfg *config.Config, logger logging.Logger, migrate bool) (*database.Client, error) {
	db, err := database.Open(ctx, cfg.Database(), logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Database migrations applied")
	}
	return db, nil
}
