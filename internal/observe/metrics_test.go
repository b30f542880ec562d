package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics bundle backed by a manual reader so tests
// can collect and inspect recorded data points.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// findMetric locates a metric by name in collected resource metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func TestNewMetrics_AllInstrumentsCreated(t *testing.T) {
	m, _ := newTestMetrics(t)

	if m.TranscriptionDuration == nil || m.LLMDuration == nil || m.SynthesisDuration == nil {
		t.Error("latency histograms not initialised")
	}
	if m.LLMRequests == nil || m.InjectionDetections == nil || m.UpdateDecisions == nil || m.ParseFallbacks == nil {
		t.Error("counters not initialised")
	}
	if m.ActiveIngestions == nil || m.HTTPRequestDuration == nil {
		t.Error("gauge or HTTP histogram not initialised")
	}
}

func TestMetrics_RecordLLMRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "synthesize"),
		attribute.String("status", "ok"),
	))
	m.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "synthesize"),
		attribute.String("status", "error"),
	))

	rm := collect(t, reader)
	met := findMetric(rm, "murmur.llm.requests")
	if met == nil {
		t.Fatal("murmur.llm.requests not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", met.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("data points = %d, want 2 (one per status)", len(sum.DataPoints))
	}
}

func TestMetrics_ActiveIngestionsReturnsToZero(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveIngestions.Add(ctx, 1)
	m.ActiveIngestions.Add(ctx, 1)
	m.ActiveIngestions.Add(ctx, -1)
	m.ActiveIngestions.Add(ctx, -1)

	rm := collect(t, reader)
	met := findMetric(rm, "murmur.active_ingestions")
	if met == nil {
		t.Fatal("murmur.active_ingestions not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", met.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 0 {
		t.Errorf("data points = %+v, want single zero value", sum.DataPoints)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned distinct instances")
	}
}
