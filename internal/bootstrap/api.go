package bootstrap

import (
	"context"
	"time"

	"github.com/turtacn/ChemGraph/internal/application/library"
	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/ChemGraph/internal/interfaces/http"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/middleware"
)

const limiterSweepInterval = time.Minute

// APIServer is the HTTP API over an opened Infrastructure.
type APIServer struct {
	server  *httpapi.Server
	limiter *middleware.TokenBucketLimiter
	logger  logging.Logger
}

// NewAPIServer builds the router and server for svc. Readiness probes the
// clients infra opened.
func NewAPIServer(infra *Infrastructure, svc library.Service, version string) *APIServer {
	cfg := infra.Config
	rc := httpapi.RouterConfig{
		StructureHandler: handlers.NewStructureHandler(svc, cfg.Server.MaxBodySize, infra.Logger),
		HealthHandler:    handlers.NewHealthHandler(version, infra.HealthCheckers()...),
		Logger:           infra.Logger,
		Logging:          middleware.DefaultLoggingConfig(),
		Metrics:          infra.Metrics,
		CORSOrigins:      cfg.Server.CORSOrigins,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsCollector = infra.Collector
		rc.MetricsPath = cfg.Metrics.Path
	}
	a := &APIServer{logger: infra.Logger}
	if cfg.Server.RateLimitRPS > 0 {
		a.limiter = middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		rc.RateLimiter = a.limiter
	}
	a.server = httpapi.NewServer(cfg.Server, httpapi.NewRouter(rc), infra.Logger)
	return a
}

// Run serves until ctx is done, then shuts the server down.
func (a *APIServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()
	if a.limiter != nil {
		go a.sweep(ctx)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down API server")
	if err := a.server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

func (a *APIServer) sweep(ctx context.Context) {
	t := time.NewTicker(limiterSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.logger.Debug("rate limiter swept", logging.Int("clients", n))
			}
		}
	}
}

// RunAPI opens the API's backends, serves until ctx is done and closes
// everything again.
func RunAPI(ctx context.Context, cfg *config.Config, log logging.Logger, version string) error {
	infra, err := Open(ctx, cfg, log, Components{Cache: true, Events: true, Search: true})
	if err != nil {
		return err
	}
	defer infra.Close()

	log.Info("starting ChemGraph API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))
	return NewAPIServer(infra, infra.Service(), version).Run(ctx)
}

//Personal.AI order the ending
