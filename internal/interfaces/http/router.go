// Package http exposes the structure library over a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemGraph/internal/interfaces/http/middleware"
)

// RouterConfig collects what NewRouter mounts. Nil handlers leave their
// routes out.
type RouterConfig struct {
	StructureHandler *handlers.StructureHandler
	HealthHandler    *handlers.HealthHandler

	Logger           logging.Logger
	Logging          middleware.LoggingConfig
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics
	MetricsPath      string
	CORSOrigins      []string
	// RateLimiter applies to /api/v1 only.
	RateLimiter middleware.RateLimiter
}

// NewRouter builds the route tree:
//
//	GET    /healthz, /readyz, <metrics path>
//	POST   /api/v1/structures             import a document
//	GET    /api/v1/structures             list
//	GET    /api/v1/structures/{id}        metadata and summary
//	GET    /api/v1/structures/{id}/document
//	DELETE /api/v1/structures/{id}
//	GET    /api/v1/search?q=
//	POST   /api/v1/convert?from=&to=
//	POST   /api/v1/inspect?format=
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, cfg.Logging))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter))
		}
		registerStructureRoutes(api, cfg.StructureHandler)
	})
	return r
}

func registerStructureRoutes(r chi.Router, h *handlers.StructureHandler) {
	if h == nil {
		return
	}
	r.Route("/structures", func(sr chi.Router) {
		sr.Get("/", h.List)
		sr.Post("/", h.Import)
		sr.Route("/{id}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)
			item.Get("/document", h.Document)
		})
	})
	r.Get("/search", h.Search)
	r.Post("/convert", h.Convert)
	r.Post("/inspect", h.Inspect)
}

//Personal.AI order the ending
