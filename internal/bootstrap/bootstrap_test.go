package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/application/library"
	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/converter"
	domainLib "github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

type projectingService struct {
	library.Service
	calls    int
	deadline bool
	err      error
}

func (s *projectingService) Project(ctx context.Context, _ domainLib.Event) error {
	s.calls++
	_, s.deadline = ctx.Deadline()
	return s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestProjectionHandler_AddsDeadline(t *testing.T) {
	svc := &projectingService{}
	h := ProjectionHandler(svc, time.Second)

	require.NoError(t, h(context.Background(), domainLib.Event{Type: domainLib.EventImported}))
	assert.Equal(t, 1, svc.calls)
	assert.True(t, svc.deadline)
}

func TestProjectionHandler_PassesErrors(t *testing.T) {
	svc := &projectingService{err: errors.New("neo4j down")}
	err := ProjectionHandler(svc, 0)(context.Background(), domainLib.Event{})
	assert.EqualError(t, err, "neo4j down")
}

func TestCodecs_UsesChemistrySection(t *testing.T) {
	reg := Codecs(testConfig(t), nil)
	for _, f := range []converter.Format{converter.FormatCML, converter.FormatMolfile, converter.FormatSDF} {
		_, err := reg.Codec(f)
		assert.NoError(t, err, f)
	}
}

func TestInfrastructure_EmptyIsSafe(t *testing.T) {
	infra := &Infrastructure{Config: testConfig(t), Logger: logging.NewNopLogger()}
	assert.Empty(t, infra.HealthCheckers())
	assert.NotPanics(t, infra.Close)

	_, err := infra.Service().List(context.Background(), &library.ListInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestNewAPIServer_RateLimiterFollowsConfig(t *testing.T) {
	cfg := testConfig(t)
	infra := &Infrastructure{Config: cfg, Logger: logging.NewNopLogger()}
	assert.Nil(t, NewAPIServer(infra, infra.Service(), "test").limiter)

	cfg.Server.RateLimitRPS = 5
	cfg.Server.RateLimitBurst = 10
	a := NewAPIServer(infra, infra.Service(), "test")
	require.NotNil(t, a.limiter)
	assert.Equal(t, 10, a.limiter.Limit())
}

func TestAPIServer_RunStopsWithContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	collector, metrics, err := NewMetrics(cfg.Metrics, nil)
	require.NoError(t, err)
	infra := &Infrastructure{Config: cfg, Logger: logging.NewNopLogger(), Collector: collector, Metrics: metrics}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewAPIServer(infra, infra.Service(), "test").Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

//Personal.AI order the ending
