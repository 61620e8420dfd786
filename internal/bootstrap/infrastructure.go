// Package bootstrap assembles the infrastructure clients and the structure
// library service shared by the ChemGraph binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/ChemGraph/internal/application/library"
	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/converter"
	neo4jinfra "github.com/turtacn/ChemGraph/internal/infrastructure/database/neo4j"
	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/turtacn/ChemGraph/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/internal/infrastructure/search/opensearch"
	minioinfra "github.com/turtacn/ChemGraph/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/handlers"
)

// Components selects the optional backends to open. The catalog database
// and the document store are always opened.
type Components struct {
	Cache  bool // redis conversion cache
	Events bool // kafka producer
	Search bool // opensearch index
	Graph  bool // neo4j projection
}

// Infrastructure owns every client a binary opened.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Postgres   *postgres.Connection
	MinIO      *minioinfra.Client
	Redis      *redisinfra.Client
	Producer   *kafka.Producer
	OpenSearch *opensearch.Client
	Neo4j      *neo4jinfra.Driver

	Repository *repositories.StructureRepository
	Documents  *minioinfra.DocumentRepository
	Cache      *redisinfra.ConversionCache
	Indexer    *opensearch.Indexer
	Projector  *neo4jinfra.GraphProjector
}

// NewMetrics registers the application metrics under the configured
// namespace.
func NewMetrics(cfg config.MetricsConfig, log logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: cfg.Namespace}, log)
	if err != nil {
		return nil, nil, err
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// Open connects the selected components in dependency order. On failure
// everything opened so far is closed again.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger, want Components) (*Infrastructure, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infrastructure{Config: cfg, Logger: log}
	if err := infra.open(ctx, want); err != nil {
		infra.Close()
		return nil, err
	}
	log.Info("infrastructure initialized",
		logging.Bool("cache", want.Cache),
		logging.Bool("events", want.Events),
		logging.Bool("search", want.Search),
		logging.Bool("graph", want.Graph))
	return infra, nil
}

func (i *Infrastructure) open(ctx context.Context, want Components) (err error) {
	cfg, log := i.Config, i.Logger
	if i.Collector, i.Metrics, err = NewMetrics(cfg.Metrics, log); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if i.Postgres, err = postgres.NewConnection(ctx, cfg.Database, log); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	i.Repository = repositories.NewStructureRepository(i.Postgres, log, i.Metrics)

	if i.MinIO, err = minioinfra.NewClient(ctx, cfg.MinIO, log); err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	i.Documents = minioinfra.NewDocumentRepository(i.MinIO, log)

	if want.Cache {
		if i.Redis, err = redisinfra.NewClient(ctx, cfg.Redis, log); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		i.Cache = redisinfra.NewConversionCache(i.Redis, log,
			redisinfra.WithTTL(cfg.Redis.DefaultTTL), redisinfra.WithMetrics(i.Metrics))
	}
	if want.Events {
		if i.Producer, err = kafka.NewProducer(cfg.Kafka, log, i.Metrics); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	if want.Search {
		if i.OpenSearch, err = opensearch.NewClient(ctx, cfg.OpenSearch, log); err != nil {
			return fmt.Errorf("opensearch: %w", err)
		}
		i.Indexer = opensearch.NewIndexer(i.OpenSearch, log)
		if err = i.Indexer.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("opensearch index: %w", err)
		}
	}
	if want.Graph {
		if i.Neo4j, err = neo4jinfra.NewDriver(ctx, cfg.Neo4j, log); err != nil {
			return fmt.Errorf("neo4j: %w", err)
		}
		i.Projector = neo4jinfra.NewGraphProjector(i.Neo4j, log)
	}

	return nil
}

// Service builds the library service over whatever was opened. Components
// left closed stay nil in Dependencies.
func (i *Infrastructure) Service() library.Service {
	deps := library.Dependencies{
		Codecs:           Codecs(i.Config, i.Logger),
		Metrics:          i.Metrics,
		Logger:           i.Logger,
		MaxDocumentBytes: i.Config.Chemistry.MaxDocumentBytes,
	}
	if i.Repository != nil {
		deps.Repository = i.Repository
	}
	if i.Documents != nil {
		deps.Documents = i.Documents
	}
	if i.Cache != nil {
		deps.Cache = i.Cache
	}
	if i.Producer != nil {
		deps.Publisher = i.Producer
	}
	if i.Indexer != nil {
		deps.Indexer = i.Indexer
	}
	if i.Projector != nil {
		deps.Projector = i.Projector
	}
	return library.NewService(deps)
}

// HealthCheckers probes every opened backend.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var out []handlers.HealthChecker
	if i.Postgres != nil {
		out = append(out, handlers.NewCheck("postgres", i.Postgres.HealthCheck))
	}
	if i.MinIO != nil {
		out = append(out, handlers.NewCheck("minio", i.MinIO.HealthCheck))
	}
	if i.Redis != nil {
		out = append(out, handlers.NewCheck("redis", i.Redis.Ping))
	}
	if i.OpenSearch != nil {
		out = append(out, handlers.NewCheck("opensearch", i.OpenSearch.Ping))
	}
	if i.Neo4j != nil {
		out = append(out, handlers.NewCheck("neo4j", i.Neo4j.HealthCheck))
	}
	return out
}

// Close releases the clients in reverse order of Open.
func (i *Infrastructure) Close() {
	closeOne := func(name string, fn func() error) {
		if err := fn(); err != nil {
			i.Logger.Warn("closing client failed", logging.String("client", name), logging.Err(err))
		}
	}
	if i.Neo4j != nil {
		closeOne("neo4j", i.Neo4j.Close)
	}
	if i.Producer != nil {
		closeOne("kafka", i.Producer.Close)
	}
	if i.Redis != nil {
		closeOne("redis", i.Redis.Close)
	}
	if i.MinIO != nil {
		closeOne("minio", i.MinIO.Close)
	}
	if i.Postgres != nil {
		closeOne("postgres", i.Postgres.Close)
	}
}

// Codecs is the converter registry configured by the chemistry section.
func Codecs(cfg *config.Config, log logging.Logger) *converter.Registry {
	return converter.NewRegistry(converter.Options{Logger: log, ModelOptions: cfg.Chemistry.ModelOptions()})
}

//Personal.AI order the ending
