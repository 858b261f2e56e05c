package cli

import (
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/slgMitch/fidelity-interview/graph"
	"github.com/slgMitch/fidelity-interview/internal/auth"
	"github.com/slgMitch/fidelity-interview/internal/logging"
	"github.com/slgMitch/fidelity-interview/internal/monitoring"
	"github.com/slgMitch/fidelity-interview/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) (err error) {
	ctx := cmd.Context()
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg, logger, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	if cfg.SchemaOutput != "" {
		if err := writeSchema(cfg.SchemaOutput); err != nil {
			return err
		}
		logger.WithField("path", cfg.SchemaOutput).Info("GraphQL schema written")
	}

	exec, err := graph.NewExecutor(db, logger, cfg.GraphQLMaxDepth)
	if err != nil {
		return err
	}
	metrics := monitoring.NewMetricsCollector(server.ServiceName, server.Version)
	exec.SetObserver(metrics)

	health := monitoring.NewHealthChecker(server.ServiceName, server.Version)
	health.AddCheck("database", monitoring.DatabaseCheck(db))

	var validator *auth.Validator
	if cfg.AuthEnabled() {
		validator = auth.NewValidator(cfg.AuthJWTSecret, cfg.AuthIssuer)
	}

	router := server.NewRouter(cfg.GinMode, server.Dependencies{
		Executor:  exec,
		Health:    health,
		Metrics:   metrics,
		Validator: validator,
		Logger:    logger,
	})

	logger.WithFields(logging.Fields{
		"port":   cfg.Port,
		"driver": cfg.DatabaseDriver,
		"auth":   cfg.AuthEnabled(),
	}).Info("CRM API listening")

	return server.Start(ctx, server.DefaultConfig(cfg.Port), router, logger)
}
