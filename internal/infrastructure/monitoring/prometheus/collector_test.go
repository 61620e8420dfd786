package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "rt", GoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrape(t, c), "go_goroutines")
}

func TestRegisterCounter_Counts(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("things_total", "things", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	n, err := testutil.GatherAndCount(c.Gatherer(), "test_unit_things_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, scrape(t, c), `test_unit_things_total{kind="a"} 3`)
}

func TestRegisterCounter_SameNameIsShared(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("shared_total", "shared", "k")
	second := c.RegisterCounter("shared_total", "shared", "k")
	first.WithLabelValues("x").Inc()
	second.WithLabelValues("x").Inc()
	assert.Contains(t, scrape(t, c), `test_unit_shared_total{k="x"} 2`)
}

func TestRegister_TypeClashFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("clash", "clash")
	g := c.RegisterGauge("clash", "clash")
	assert.IsType(t, noopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })
}

func TestRegister_InvalidNameFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("bad-name", "bad", nil)
	assert.IsType(t, noopHistogramVec{}, h)
	h.WithLabelValues().Observe(1)
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("level", "level", "pool")
	g.WithLabelValues("p").Set(5)
	g.WithLabelValues("p").Inc()
	g.WithLabelValues("p").Dec()
	g.WithLabelValues("p").Dec()
	assert.Contains(t, scrape(t, c), `test_unit_level{pool="p"} 4`)
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "latency", nil, "op")
	h.WithLabelValues("read").Observe(0.2)
	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{op="read",le="0.25"} 1`)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="read"} 1`)
}

func TestRegister_Concurrent(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("racy_total", "racy").WithLabelValues().Inc()
		}()
	}
	wg.Wait()
	assert.Contains(t, scrape(t, c), "test_unit_racy_total 16")
}

type recordingHistogram struct{ got []float64 }

func (r *recordingHistogram) Observe(v float64) { r.got = append(r.got, v) }

func TestTimer_ObserveDuration(t *testing.T) {
	h := &recordingHistogram{}
	timer := NewTimer(h)
	time.Sleep(5 * time.Millisecond)
	d := timer.ObserveDuration()
	require.Len(t, h.got, 1)
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	assert.InDelta(t, d.Seconds(), h.got[0], 1e-9)
}

func TestTimer_NilHistogram(t *testing.T) {
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

func TestHandler_OpenMetrics(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("om_total", "om").WithLabelValues().Inc()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/openmetrics-text"))
}

//Personal.AI order the ending
