package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m.HTTPRequestsTotal == nil || m.BuildsTotal == nil || m.CacheRequestsTotal == nil || m.ExtractItems == nil {
		t.Fatal("metrics not initialized")
	}
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("runtime collectors should be registered")
	}
}

func TestMetricsHTTPHooks(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "/healthz")
	if got := gaugeValue(t, m.HTTPRequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnResponse(ctx, "GET", "/healthz", 200, 5*time.Millisecond)
	if got := gaugeValue(t, m.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := counterValue(t, m.HTTPRequestsTotal, "GET", "/healthz", "200"); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestMetricsGraphHooks(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	m.OnBuild(ctx, "Player", 5, 7, time.Millisecond)
	m.OnBuild(ctx, "Player", 5, 7, time.Millisecond)
	if got := counterValue(t, m.BuildsTotal, "Player"); got != 2 {
		t.Errorf("builds = %v, want 2", got)
	}
	if got := gaugeValue(t, m.GraphStates.WithLabelValues("Player")); got != 5 {
		t.Errorf("states = %v, want 5", got)
	}

	m.OnLayoutComplete(ctx, "Player", 10, time.Millisecond, nil)
	m.OnLayoutComplete(ctx, "Player", 0, time.Millisecond, context.Canceled)
	if got := counterValue(t, m.LayoutsTotal, "Player", "ok"); got != 1 {
		t.Errorf("ok layouts = %v, want 1", got)
	}
	if got := counterValue(t, m.LayoutsTotal, "Player", "error"); got != 1 {
		t.Errorf("failed layouts = %v, want 1", got)
	}

	m.OnRenderComplete(ctx, "Player", "svg", time.Millisecond, nil)
	if got := counterValue(t, m.RendersTotal, "svg", "ok"); got != 1 {
		t.Errorf("renders = %v, want 1", got)
	}
}

func TestMetricsCacheAndExtractHooks(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "layout", 128)
	if got := counterValue(t, m.CacheRequestsTotal, "layout", "miss"); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := counterValue(t, m.CacheWrittenBytes, "layout"); got != 128 {
		t.Errorf("written = %v, want 128", got)
	}

	m.OnFileScanned(ctx, "inherit", 12)
	m.OnFileScanned(ctx, "inherit", 0)
	m.OnExtractComplete(ctx, "inherit", 40, time.Millisecond, nil)
	if got := counterValue(t, m.ExtractFilesScanned, "inherit"); got != 2 {
		t.Errorf("files = %v, want 2", got)
	}
	if got := counterValue(t, m.ExtractMatches, "inherit"); got != 12 {
		t.Errorf("matches = %v, want 12", got)
	}
	if got := counterValue(t, m.ExtractItems, "inherit"); got != 40 {
		t.Errorf("items = %v, want 40", got)
	}
}

func TestMetricsRecordReload(t *testing.T) {
	m := NewMetrics()
	m.RecordReload(3, nil)
	m.RecordReload(0, errors.New("bad yaml"))

	if got := gaugeValue(t, m.RegistryMachines); got != 3 {
		t.Errorf("machines = %v, want 3 (failed reloads keep the count)", got)
	}
	if got := counterValue(t, m.RegistryReloads, "error"); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}
