package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
)

// TracerOptions configures NewTracerProvider.
type TracerOptions struct {
	// Endpoint is the OTLP gRPC collector address. Empty logs spans instead.
	Endpoint string

	// ServiceName and ServiceVersion describe the resource.
	ServiceName    string
	ServiceVersion string

	// SamplingRatio is the fraction of navigations traced. Default: 1.
	SamplingRatio float64

	// Logger receives spans when no endpoint is set.
	Logger *slog.Logger
}

// NewTracerProvider builds an SDK tracer provider and installs it as the
// global provider.
func NewTracerProvider(ctx context.Context, opts TracerOptions) (*sdktrace.TracerProvider, error) {
	if opts.SamplingRatio <= 0 {
		opts.SamplingRatio = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.ServiceVersion),
		))
	if err != nil {
		return nil, err
	}

	var exp sdktrace.SpanExporter
	if opts.Endpoint != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		exp, err = otlptracegrpc.New(dialCtx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(opts.Endpoint),
		)
		if err != nil {
			return nil, err
		}
	} else {
		exp = &logExporter{logger: opts.Logger}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(opts.SamplingRatio)),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exp)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)
	return tp, nil
}

// logExporter writes finished spans to a logger.
type logExporter struct {
	logger *slog.Logger
}

var _ sdktrace.SpanExporter = (*logExporter)(nil)

func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := []any{
			"trace_id", span.SpanContext().TraceID().String(),
			"duration", span.EndTime().Sub(span.StartTime()),
			"status", span.Status().Code.String(),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, string(kv.Key), kv.Value.Emit())
		}
		e.logger.InfoContext(ctx, "span "+span.Name(), attrs...)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error { return nil }
