//go:build integration

// Package integration runs the library service against real PostgreSQL,
// MinIO and Redis containers started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres"
)

const startupTimeout = 90 * time.Second

// startContainer runs req and returns host:port of its first exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest) (string, int) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

// newStackConfig starts the catalog, document store and cache, migrates the
// catalog and returns a config pointing at them.
func newStackConfig(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("container stack skipped in short mode")
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Metrics.Namespace = "it"

	pgHost, pgPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "chemgraph",
			"POSTGRES_PASSWORD": "chemgraph",
			"POSTGRES_DB":       "chemgraph",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(startupTimeout),
	})
	cfg.Database.Host, cfg.Database.Port = pgHost, pgPort
	cfg.Database.User, cfg.Database.Password, cfg.Database.DBName = "chemgraph", "chemgraph", "chemgraph"
	cfg.Database.SSLMode = "disable"

	minioHost, minioPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "chemgraph",
			"MINIO_ROOT_PASSWORD": "chemgraph-secret",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startupTimeout),
	})
	cfg.MinIO.Endpoint = fmt.Sprintf("%s:%d", minioHost, minioPort)
	cfg.MinIO.AccessKey, cfg.MinIO.SecretKey = "chemgraph", "chemgraph-secret"
	cfg.MinIO.Bucket = "structures-it"
	cfg.MinIO.UseSSL = false

	redisHost, redisPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupTimeout),
	})
	cfg.Redis.Addr = fmt.Sprintf("%s:%d", redisHost, redisPort)

	m, err := postgres.NewMigrator(cfg.Database, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())
	return cfg
}

//Personal.AI order the ending
