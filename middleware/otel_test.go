package middleware

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

func setupOTel(t *testing.T) (*tracetest.InMemoryExporter, *sdkmetric.ManualReader, Middleware) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return exporter, reader, OTel(WithTracerProvider(tp), WithMeterProvider(mp))
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s data = %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestOTel_Validation(t *testing.T) {
	exporter, reader, mw := setupOTel(t)

	handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewResponse(req.ID, schema.ValidateNode("x", schema.Integer())), nil
	}
	req := &protocol.Request{
		Method: protocol.MethodSchemasValidate,
		Params: json.RawMessage(`{"schema":"user","data":"x"}`),
	}
	ctx := ContextWithRequestID(context.Background(), "req-1")

	if _, err := mw(handler)(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "schemaforge.schemas/validate" {
		t.Errorf("span name = %q", span.Name)
	}
	attrs := map[string]any{}
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[string(AttrSchema)] != "user" {
		t.Errorf("schema attribute = %v", attrs[string(AttrSchema)])
	}
	if attrs[string(AttrValid)] != false {
		t.Errorf("valid attribute = %v", attrs[string(AttrValid)])
	}
	if attrs[string(AttrRequestID)] != "req-1" {
		t.Errorf("request ID attribute = %v", attrs[string(AttrRequestID)])
	}

	if got := sumOf(t, reader, "schemaforge.validations"); got != 1 {
		t.Errorf("validations = %d, want 1", got)
	}
	if got := sumOf(t, reader, "schemaforge.requests"); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestOTel_Errors(t *testing.T) {
	exporter, reader, mw := setupOTel(t)

	handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return nil, protocol.NewNotFound("schema not found: x")
	}
	_, _ = mw(handler)(context.Background(), &protocol.Request{Method: protocol.MethodSchemasGet})

	span := exporter.GetSpans()[0]
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", span.Status.Code)
	}
	if got := sumOf(t, reader, "schemaforge.errors"); got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
}

func TestOTel_SkipMethods(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	mw := OTel(WithTracerProvider(tp), WithOTelSkipMethods(protocol.MethodPing), WithOTelServiceName("test"))
	_, _ = mw(okHandler)(context.Background(), &protocol.Request{Method: protocol.MethodPing})

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no spans for skipped method, got %d", n)
	}
}

func TestAddSpanEvent(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	AddSpanEvent(ctx, "schema.compiled", AttrSchema.String("user"))
	span.End()

	events := exporter.GetSpans()[0].Events
	if len(events) != 1 || events[0].Name != "schema.compiled" {
		t.Errorf("events = %+v", events)
	}
}
