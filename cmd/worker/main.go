// Command worker consumes structure events from Kafka and projects the
// structures into OpenSearch and Neo4j.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/ChemGraph/internal/bootstrap"
	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

const defaultHealthPort = 8081

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: CHEMGRAPH_* environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and metrics (0 disables)")
	ensureTopics := flag.Bool("ensure-topics", false, "create missing Kafka topics before consuming")
	handlerTimeout := flag.Duration("handler-timeout", 2*time.Minute, "deadline of one projection attempt")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = bootstrap.RunWorker(ctx, cfg, logger, bootstrap.WorkerOptions{
		HealthPort:     *healthPort,
		EnsureTopics:   *ensureTopics,
		HandlerTimeout: *handlerTimeout,
		Version:        version,
	})
	if err != nil {
		logger.Error("worker failed", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

//Personal.AI order the ending
