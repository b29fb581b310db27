package otel

import (
	"context"
	"sync"
	"testing"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goGate.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goGate.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goGate.MetricsSnapshot{
		Counters:   make(map[goGate.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goGate.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findSum(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
				return sum.DataPoints[0].Value, true
			}
			if g, ok := m.Data.(metricdata.Gauge[int64]); ok && len(g.DataPoints) > 0 {
				return g.DataPoints[0].Value, true
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("gogate-test")

	src := &fakeSource{
		snapshot: goGate.MetricsSnapshot{
			Counters: map[goGate.MetricID]uint64{
				goGate.MetricLoginSuccess: 3,
			},
			Histograms: map[goGate.MetricID][]uint64{
				goGate.MetricDecideLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if v, ok := findSum(rm, "gogate_login_success_total"); !ok || v != 3 {
		t.Fatalf("login success = %d, %v", v, ok)
	}
	if v, ok := findSum(rm, "gogate_decide_latency_seconds_bucket_le_inf"); !ok || v != 8 {
		t.Fatalf("inf bucket = %d, %v", v, ok)
	}
	if v, ok := findSum(rm, "gogate_audit_dropped_total"); !ok || v != 1 {
		t.Fatalf("audit dropped = %d, %v", v, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newReader()
	meter := provider.Meter("gogate-test")

	if _, err := NewFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := New(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil gate, got %v", err)
	}
}

func TestExporterOverGate(t *testing.T) {
	reader, provider := newReader()
	g, err := goGate.New().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(g.Close)
	ctx := context.Background()
	g.Bootstrap(ctx)
	if err := g.Login(ctx, goGate.UserIdentity{Username: "viewer", Role: role.Viewer}, "tok"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	g.Decide(ctx, policy.AdminPanel)

	exp, err := New(provider.Meter("gogate-test"), g)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if v, _ := findSum(rm, "gogate_guard_deny_forbidden_total"); v != 1 {
		t.Fatalf("deny forbidden = %d", v)
	}
	if v, _ := findSum(rm, "gogate_login_success_total"); v != 1 {
		t.Fatalf("login success = %d", v)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("gogate-test")

	src := &fakeSource{
		snapshot: goGate.MetricsSnapshot{
			Counters:   map[goGate.MetricID]uint64{goGate.MetricLoginSuccess: 1},
			Histograms: map[goGate.MetricID][]uint64{goGate.MetricDecideLatency: {1}},
		},
	}

	exp, err := NewFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewFromSource failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goGate.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
