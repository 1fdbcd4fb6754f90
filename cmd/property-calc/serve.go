package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/iwvelando/property-calc/internal/config"
	"github.com/iwvelando/property-calc/internal/server"
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCommand constructs the 'serve' subcommand that runs the HTTP API until
// interrupted.
func serveCommand(a *app) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the calculation API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			// The server file may carry its own logging section.
			logger := a.logger
			if cfg.Logging != (config.LoggingConfig{}) {
				logger, err = initializeLogger(cfg.Logging, a.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, a.conf, logger, version)
			if err != nil {
				return fmt.Errorf("could not create server: %w", err)
			}

			logger.Info("starting server",
				zap.String("op", "main.serve"),
				zap.String("address", cfg.Address),
				zap.String("cache", cfg.Cache.Backend),
				zap.Bool("rate_limit", cfg.RateLimit.Enabled),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")

	return cmd
}
