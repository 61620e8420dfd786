package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric ChemGraph exports. A nil *AppMetrics is
// accepted by all Record helpers and records nothing.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Conversion
	ConversionsTotal   CounterVec
	ConversionDuration HistogramVec

	// Import
	ImportsTotal       CounterVec
	ImportAtoms        HistogramVec
	ImportRings        HistogramVec
	ImportWarnings     CounterVec
	ImportGeneralError CounterVec

	// Infrastructure
	DBQueryDuration       HistogramVec
	CacheHitsTotal        CounterVec
	CacheMissesTotal      CounterVec
	EventsPublishedTotal  CounterVec
	EventsConsumedTotal   CounterVec
	ProjectionDuration    HistogramVec
	ProjectionErrorsTotal CounterVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultConversionDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultDBDurationBuckets         = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultAtomCountBuckets          = []float64{1, 5, 10, 25, 50, 100, 250, 1000, 10000}
	DefaultRingCountBuckets          = []float64{0, 1, 2, 3, 4, 6, 8, 12, 20}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "HTTP requests served", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request latency", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.ConversionsTotal = collector.RegisterCounter("conversions_total", "Format conversions", "from", "to", "status")
	m.ConversionDuration = collector.RegisterHistogram("conversion_duration_seconds", "Format conversion latency", DefaultConversionDurationBuckets, "from", "to")

	m.ImportsTotal = collector.RegisterCounter("imports_total", "Documents imported into the library", "format", "status")
	m.ImportAtoms = collector.RegisterHistogram("import_atoms", "Atoms per imported document", DefaultAtomCountBuckets, "format")
	m.ImportRings = collector.RegisterHistogram("import_rings", "Rings per imported document", DefaultRingCountBuckets, "format")
	m.ImportWarnings = collector.RegisterCounter("import_warnings_total", "Warnings attached to imported molecules", "format")
	m.ImportGeneralError = collector.RegisterCounter("import_general_errors_total", "Model level errors raised while importing", "format")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Catalog query latency", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Structure events published", "topic", "status")
	m.EventsConsumedTotal = collector.RegisterCounter("events_consumed_total", "Structure events consumed", "topic", "status")
	m.ProjectionDuration = collector.RegisterHistogram("projection_duration_seconds", "Projection latency per target", DefaultDBDurationBuckets, "target")
	m.ProjectionErrorsTotal = collector.RegisterCounter("projection_errors_total", "Failed projections per target", "target")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(m *AppMetrics, method, route string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordConversion counts one conversion from one format to another.
func RecordConversion(m *AppMetrics, from, to string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(from, to, status(err)).Inc()
	m.ConversionDuration.WithLabelValues(from, to).Observe(d.Seconds())
}

// ImportStats is the shape of an imported document.
type ImportStats struct {
	Atoms         int
	Rings         int
	Warnings      int
	GeneralErrors int
}

// RecordImport counts one library import. stats is ignored when err is set.
func RecordImport(m *AppMetrics, format string, stats ImportStats, err error) {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(format, status(err)).Inc()
	if err != nil {
		return
	}
	m.ImportAtoms.WithLabelValues(format).Observe(float64(stats.Atoms))
	m.ImportRings.WithLabelValues(format).Observe(float64(stats.Rings))
	if stats.Warnings > 0 {
		m.ImportWarnings.WithLabelValues(format).Add(float64(stats.Warnings))
	}
	if stats.GeneralErrors > 0 {
		m.ImportGeneralError.WithLabelValues(format).Add(float64(stats.GeneralErrors))
	}
}

func RecordDBQuery(m *AppMetrics, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues("postgres", operation).Inc()
	}
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordEventPublished(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status(err)).Inc()
}

func RecordEventConsumed(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	m.EventsConsumedTotal.WithLabelValues(topic, status(err)).Inc()
}

// RecordProjection times one projection into a secondary store ("neo4j",
// "opensearch").
func RecordProjection(m *AppMetrics, target string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ProjectionDuration.WithLabelValues(target).Observe(d.Seconds())
	if err != nil {
		m.ProjectionErrorsTotal.WithLabelValues(target).Inc()
	}
}

func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
