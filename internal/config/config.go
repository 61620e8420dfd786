// Package config defines the configuration of the ChemGraph binaries. This
// file holds plain data types and validation only; loading lives in
// loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds the HTTP API tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins lists browser origins allowed to call the API; "*" allows
	// any. Empty disables CORS headers.
	CORSOrigins []string `mapstructure:"cors_origins"`
	// RateLimitRPS caps requests per second per client; zero disables it.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds the PostgreSQL catalog connection.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the connection as a postgres URL.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds the conversion cache connection.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the document blob store.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// KafkaConfig holds the structure event bus.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	StartOffset  string        `mapstructure:"start_offset"` // "earliest" | "latest"
}

// OpenSearchConfig holds the structure search cluster.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	IndexName          string   `mapstructure:"index_name"`
}

// Neo4jConfig holds the graph projection target.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// MetricsConfig holds the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level        string   `mapstructure:"level"`  // debug | info | warn | error
	Format       string   `mapstructure:"format"` // json | console
	Output       []string `mapstructure:"output"`
	EnableCaller bool     `mapstructure:"enable_caller"`
}

// Logging converts the section into the logger's construction parameters.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{
		Level:        l.Level,
		Format:       l.Format,
		OutputPaths:  l.Output,
		EnableCaller: l.EnableCaller,
	}
}

// ChemistryConfig holds the tunables of the chemistry core.
type ChemistryConfig struct {
	// DisplayScaleFactor multiplies native coordinates for display.
	DisplayScaleFactor float64 `mapstructure:"display_scale_factor"`
	// SingleAtomPseudoBondLength is the mean bond length reported by a
	// bondless model, in native units.
	SingleAtomPseudoBondLength float64 `mapstructure:"single_atom_pseudo_bond_length"`
	// RingExclusionWarning is how many rings of one molecule may be left
	// out of placement before a warning is raised.
	RingExclusionWarning int `mapstructure:"ring_exclusion_warning"`
	// MaxDocumentBytes rejects larger uploads before parsing.
	MaxDocumentBytes int64 `mapstructure:"max_document_bytes"`
}

// ModelOptions turns the section into options for every Model a converter
// creates.
func (c ChemistryConfig) ModelOptions() []chemistry.Option {
	return []chemistry.Option{
		chemistry.WithDisplayBondLength(c.SingleAtomPseudoBondLength * c.DisplayScaleFactor),
		chemistry.WithRingExclusionWarning(c.RingExclusionWarning),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration shared by every binary.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Chemistry  ChemistryConfig  `mapstructure:"chemistry"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the populated Config and returns the first problem.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be >= 0, got %g", c.Server.RateLimitRPS)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	switch c.Kafka.StartOffset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("config: kafka.start_offset %q is invalid; expected earliest|latest", c.Kafka.StartOffset)
	}

	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must not be empty")
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Chemistry.DisplayScaleFactor <= 0 {
		return fmt.Errorf("config: chemistry.display_scale_factor must be > 0, got %g", c.Chemistry.DisplayScaleFactor)
	}
	if c.Chemistry.SingleAtomPseudoBondLength <= 0 {
		return fmt.Errorf("config: chemistry.single_atom_pseudo_bond_length must be > 0, got %g", c.Chemistry.SingleAtomPseudoBondLength)
	}
	if c.Chemistry.RingExclusionWarning < 0 {
		return fmt.Errorf("config: chemistry.ring_exclusion_warning must be >= 0, got %d", c.Chemistry.RingExclusionWarning)
	}
	return nil
}

//Personal.AI order the ending
