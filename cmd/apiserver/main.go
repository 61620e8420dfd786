// Command apiserver serves the structure library HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ChemGraph/internal/bootstrap"
	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: CHEMGRAPH_* environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if *configPath != "" {
		_, err := config.Watch(*configPath, func(c *config.Config) {
			logger.Info("configuration reloaded, applying log level",
				logging.String("level", c.Log.Level))
			if l, ok := logger.(interface{ SetLevel(string) }); ok {
				l.SetLevel(c.Log.Level)
			}
		}, func(err error) {
			logger.Warn("configuration reload rejected", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration watch disabled", logging.Err(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunAPI(ctx, cfg, logger, version); err != nil {
		logger.Error("API server failed", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("API server stopped")
}

//Personal.AI order the ending
