package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

// ServeFunc runs a server until ctx is done.
type ServeFunc func(ctx context.Context, cfg *config.Config, log logging.Logger, version string) error

// NewServeCmd creates the serve command around run.
func NewServeCmd(run ServeFunc) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the structure library HTTP API",
		Long: "Connects to PostgreSQL, MinIO, Redis, Kafka and OpenSearch as configured\n" +
			"and serves the API until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			logger, err := logging.NewLogger(cfg.Log.Logging())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, &cfg, logger, Version)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

//Personal.AI order the ending
