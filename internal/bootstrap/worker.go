package bootstrap

import (
	"context"
	"time"

	"github.com/turtacn/ChemGraph/internal/application/library"
	"github.com/turtacn/ChemGraph/internal/config"
	domainLib "github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/ChemGraph/internal/interfaces/http"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/handlers"
)

const defaultHandlerTimeout = 2 * time.Minute

// WorkerOptions tunes the projection worker.
type WorkerOptions struct {
	// HealthPort serves /healthz, /readyz and metrics; zero disables it.
	HealthPort int
	// EnsureTopics creates missing library topics before consuming.
	EnsureTopics bool
	// HandlerTimeout bounds one projection attempt.
	HandlerTimeout time.Duration
	Version        string
}

// ProjectionHandler adapts the library service to the consumer. Every
// attempt gets its own deadline.
func ProjectionHandler(svc library.Service, timeout time.Duration) kafka.Handler {
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	return func(ctx context.Context, e domainLib.Event) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return svc.Project(ctx, e)
	}
}

// RunWorker consumes library events and projects them into OpenSearch and
// Neo4j until ctx is done. Exhausted events go to the dead-letter topic.
func RunWorker(ctx context.Context, cfg *config.Config, log logging.Logger, opts WorkerOptions) error {
	if opts.EnsureTopics {
		tm, err := kafka.NewTopicManager(ctx, cfg.Kafka.Brokers, log)
		if err != nil {
			return err
		}
		err = tm.EnsureTopics(kafka.DefaultTopics(cfg.Kafka.TopicPrefix))
		_ = tm.Close()
		if err != nil {
			return err
		}
	}

	infra, err := Open(ctx, cfg, log, Components{Events: true, Search: true, Graph: true})
	if err != nil {
		return err
	}
	defer infra.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, ProjectionHandler(infra.Service(), opts.HandlerTimeout),
		infra.Producer, log, infra.Metrics)
	if err != nil {
		return err
	}

	var health *httpapi.Server
	if opts.HealthPort > 0 {
		sc := cfg.Server
		sc.Port = opts.HealthPort
		rc := httpapi.RouterConfig{
			HealthHandler: handlers.NewHealthHandler(opts.Version, infra.HealthCheckers()...),
			Logger:        log,
		}
		if cfg.Metrics.Enabled {
			rc.MetricsCollector = infra.Collector
			rc.MetricsPath = cfg.Metrics.Path
		}
		health = httpapi.NewServer(sc, httpapi.NewRouter(rc), log)
		go func() {
			if err := health.Start(); err != nil {
				log.Error("health server failed", logging.Err(err))
			}
		}()
	}

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	log.Info("ChemGraph worker started",
		logging.String("version", opts.Version),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Strings("topics", kafka.LibraryTopics(cfg.Kafka.TopicPrefix)))

	<-ctx.Done()
	log.Info("shutting down worker")
	if err := consumer.Close(); err != nil {
		log.Warn("closing consumer failed", logging.Err(err))
	}
	if health != nil {
		if err := health.Stop(context.Background()); err != nil {
			log.Warn("stopping health server failed", logging.Err(err))
		}
	}
	return nil
}

//Personal.AI order the ending
