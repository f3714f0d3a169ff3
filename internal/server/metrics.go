package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stateviz/pkg/observability"
)

// Metrics holds the Prometheus collectors of a stateviz process. It
// implements every hook interface of pkg/observability; [Metrics.Install]
// routes the global hooks to it.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Graph pipeline
	BuildsTotal      *prometheus.CounterVec
	GraphStates      *prometheus.GaugeVec
	GraphLinks       *prometheus.GaugeVec
	LayoutsTotal     *prometheus.CounterVec
	LayoutDuration   *prometheus.HistogramVec
	LayoutTicks      *prometheus.HistogramVec
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	RegistryReloads  *prometheus.CounterVec
	RegistryMachines prometheus.Gauge

	// Cache
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec

	// Extractors
	ExtractFilesScanned *prometheus.CounterVec
	ExtractMatches      *prometheus.CounterVec
	ExtractRunsTotal    *prometheus.CounterVec
	ExtractItems        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics set on its own registry, including the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}
	m.initHTTPMetrics()
	m.initGraphMetrics()
	m.initCacheMetrics()
	m.initExtractMetrics()
	return m
}

func (m *Metrics) initHTTPMetrics() {
	f := promauto.With(m.registry)
	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stateviz_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.HTTPRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "stateviz_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (m *Metrics) initGraphMetrics() {
	f := promauto.With(m.registry)
	m.BuildsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_graph_builds_total",
			Help: "Total number of machine graphs built",
		},
		[]string{"machine"},
	)
	m.GraphStates = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stateviz_graph_states",
			Help: "Number of states in the last build of a machine",
		},
		[]string{"machine"},
	)
	m.GraphLinks = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stateviz_graph_links",
			Help: "Number of transitions in the last build of a machine",
		},
		[]string{"machine"},
	)
	m.LayoutsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_layouts_total",
			Help: "Total number of layouts computed",
		},
		[]string{"machine", "status"},
	)
	m.LayoutDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stateviz_layout_duration_seconds",
			Help:    "Layout computation time in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"machine"},
	)
	m.LayoutTicks = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stateviz_layout_ticks",
			Help:    "Simulation ticks run per layout",
			Buckets: []float64{1, 10, 50, 100, 200, 300, 500},
		},
		[]string{"machine"},
	)
	m.RendersTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_renders_total",
			Help: "Total number of artifacts rendered",
		},
		[]string{"format", "status"},
	)
	m.RenderDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stateviz_render_duration_seconds",
			Help:    "Artifact render time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
	m.RegistryReloads = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_registry_reloads_total",
			Help: "Total number of registry reloads",
		},
		[]string{"status"},
	)
	m.RegistryMachines = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "stateviz_registry_machines",
			Help: "Number of machines in the served registry",
		},
	)
}

func (m *Metrics) initCacheMetrics() {
	f := promauto.With(m.registry)
	m.CacheRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_type", "result"},
	)
	m.CacheWrittenBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_cache_written_bytes_total",
			Help: "Total bytes written to the cache",
		},
		[]string{"key_type"},
	)
}

func (m *Metrics) initExtractMetrics() {
	f := promauto.With(m.registry)
	m.ExtractFilesScanned = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_extract_files_scanned_total",
			Help: "Total number of files scanned by extractors",
		},
		[]string{"tool"},
	)
	m.ExtractMatches = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_extract_matches_total",
			Help: "Total number of pattern matches found in scanned files",
		},
		[]string{"tool"},
	)
	m.ExtractRunsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_extract_runs_total",
			Help: "Total number of extractor runs",
		},
		[]string{"tool", "status"},
	)
	m.ExtractItems = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stateviz_extract_items_total",
			Help: "Total number of items extracted",
		},
		[]string{"tool"},
	)
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Install routes the global observability hooks to m.
func (m *Metrics) Install() {
	observability.SetGraphHooks(m)
	observability.SetExtractHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// RecordReload counts a registry reload and tracks the served machine count.
func (m *Metrics) RecordReload(machines int, err error) {
	m.RegistryReloads.WithLabelValues(statusLabel(err)).Inc()
	if err == nil {
		m.RegistryMachines.Set(float64(machines))
	}
}

// =============================================================================
// Hook implementations
// =============================================================================

func (m *Metrics) OnBuild(_ context.Context, machine string, nodes, links int, _ time.Duration) {
	m.BuildsTotal.WithLabelValues(machine).Inc()
	m.GraphStates.WithLabelValues(machine).Set(float64(nodes))
	m.GraphLinks.WithLabelValues(machine).Set(float64(links))
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, machine string, ticks int, d time.Duration, err error) {
	m.LayoutsTotal.WithLabelValues(machine, statusLabel(err)).Inc()
	if err == nil {
		m.LayoutDuration.WithLabelValues(machine).Observe(d.Seconds())
		m.LayoutTicks.WithLabelValues(machine).Observe(float64(ticks))
	}
}

func (m *Metrics) OnRenderStart(context.Context, string, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ string, format string, d time.Duration, err error) {
	m.RendersTotal.WithLabelValues(format, statusLabel(err)).Inc()
	if err == nil {
		m.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	}
}

func (m *Metrics) OnFileScanned(_ context.Context, tool string, matches int) {
	m.ExtractFilesScanned.WithLabelValues(tool).Inc()
	m.ExtractMatches.WithLabelValues(tool).Add(float64(matches))
}

func (m *Metrics) OnExtractComplete(_ context.Context, tool string, items int, _ time.Duration, err error) {
	m.ExtractRunsTotal.WithLabelValues(tool, statusLabel(err)).Inc()
	if err == nil {
		m.ExtractItems.WithLabelValues(tool).Add(float64(items))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequestsInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
