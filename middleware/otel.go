package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

const instrumentationName = "github.com/felixgeelhaar/schemaforge"

// Attribute keys.
const (
	AttrMethod    = attribute.Key("rpc.method")
	AttrRequestID = attribute.Key("schemaforge.request_id")
	AttrSchema    = attribute.Key("schemaforge.schema")
	AttrValid     = attribute.Key("schemaforge.valid")
	AttrErrorCode = attribute.Key("schemaforge.error_code")
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipMethods specifies methods to skip, such as ping.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

type instruments struct {
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
	errors      metric.Int64Counter
	validations metric.Int64Counter
	violations  metric.Int64Histogram
}

func newInstruments(meter metric.Meter) instruments {
	var in instruments
	in.requests, _ = meter.Int64Counter("schemaforge.requests",
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"))
	in.duration, _ = meter.Float64Histogram("schemaforge.request.duration",
		metric.WithDescription("Duration of requests"),
		metric.WithUnit("ms"))
	in.errors, _ = meter.Int64Counter("schemaforge.errors",
		metric.WithDescription("Total number of failed requests"),
		metric.WithUnit("{error}"))
	in.validations, _ = meter.Int64Counter("schemaforge.validations",
		metric.WithDescription("Validations by verdict"),
		metric.WithUnit("{validation}"))
	in.violations, _ = meter.Int64Histogram("schemaforge.violations",
		metric.WithDescription("Violations reported per validation"),
		metric.WithUnit("{violation}"))
	return in
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics. Each request gets a
// server span; validation requests additionally record their verdict and violation count.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "schemaforge",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	in := newInstruments(cfg.meterProvider.Meter(instrumentationName))

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				AttrMethod.String(req.Method),
				attribute.String("service.name", cfg.serviceName),
			}
			if name := SchemaName(req); name != "" {
				attrs = append(attrs, AttrSchema.String(name))
			}

			ctx, span := tracer.Start(ctx, "schemaforge."+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(AttrRequestID.String(reqID))
			}

			start := time.Now()
			in.requests.Add(ctx, 1, metric.WithAttributes(attrs...))

			resp, err := next(ctx, req)

			in.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				errAttrs := attrs
				var rpcErr *protocol.Error
				if errors.As(err, &rpcErr) {
					span.SetAttributes(AttrErrorCode.Int(rpcErr.Code))
					errAttrs = append(errAttrs, AttrErrorCode.Int(rpcErr.Code))
				}
				in.errors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
			case resp != nil && resp.Error != nil:
				span.SetStatus(codes.Error, resp.Error.Message)
				span.SetAttributes(AttrErrorCode.Int(resp.Error.Code))
				in.errors.Add(ctx, 1, metric.WithAttributes(append(attrs, AttrErrorCode.Int(resp.Error.Code))...))
			default:
				span.SetStatus(codes.Ok, "")
			}

			if res, ok := ValidationResult(resp); ok {
				span.SetAttributes(AttrValid.Bool(res.Valid))
				resultAttrs := append(attrs, AttrValid.Bool(res.Valid))
				in.validations.Add(ctx, 1, metric.WithAttributes(resultAttrs...))
				in.violations.Record(ctx, int64(len(res.Violations)), metric.WithAttributes(attrs...))
			}

			return resp, err
		}
	}
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
