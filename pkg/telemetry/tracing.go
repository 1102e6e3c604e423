package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
)

const defaultTracerName = "github.com/vango-dev/navcore"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the instrumentation name (default: module path).
	TracerName string

	// SpanName is the name given to every navigation span.
	// Default: "navigation"
	SpanName string

	// Parent is the context spans are started from. Default: background.
	Parent context.Context

	// IncludeParams records route params as span attributes.
	IncludeParams bool

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithSpanName sets the span name.
func WithSpanName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.SpanName = name
	}
}

// WithParent sets the context navigation spans descend from.
func WithParent(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Parent = ctx
	}
}

// WithIncludeParams enables param attributes on spans.
func WithIncludeParams(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeParams = include
	}
}

// WithTracerProvider sets the tracer provider used instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
		SpanName:   "navigation",
		Parent:     context.Background(),
	}
}

// Tracing is a history.Observer that opens one span per navigation and
// records each guard phase as a span event.
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

var _ history.Observer = (*Tracing)(nil)

// NewTracing creates a tracing observer using the global tracer provider.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Parent == nil {
		config.Parent = context.Background()
	}
	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{
		config: config,
		tracer: tracer,
		spans:  make(map[string]trace.Span),
	}
}

func (t *Tracing) TransitionStarted(info history.TransitionInfo) {
	attrs := []attribute.KeyValue{
		attribute.String("navcore.navigation_id", info.ID),
	}
	if info.From != nil {
		attrs = append(attrs, attribute.String("navcore.from", info.From.FullPath))
	}
	if info.To != nil {
		attrs = append(attrs, attribute.String("navcore.to", info.To.FullPath))
		if info.To.Name != "" {
			attrs = append(attrs, attribute.String("navcore.route_name", info.To.Name))
		}
		if t.config.IncludeParams {
			for k, v := range info.To.Params {
				attrs = append(attrs, attribute.String("navcore.param."+k, v))
			}
		}
	}

	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	}
	if !info.Started.IsZero() {
		opts = append(opts, trace.WithTimestamp(info.Started))
	}
	_, span := t.tracer.Start(t.config.Parent, t.config.SpanName, opts...)

	t.mu.Lock()
	t.spans[info.ID] = span
	t.mu.Unlock()
}

func (t *Tracing) GuardStarted(info history.TransitionInfo, phase history.Phase) {
	if span := t.span(info.ID, false); span != nil {
		span.AddEvent("guard phase", trace.WithAttributes(attribute.String("navcore.phase", string(phase))))
	}
}

func (t *Tracing) TransitionFinished(info history.TransitionInfo, result history.Result, err error) {
	span := t.span(info.ID, true)
	if span == nil {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.String("navcore.result", string(result)))
	if code := naverrors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("navcore.error_code", code))
	}
	if history.IsGenuine(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// Active returns the number of spans not yet ended.
func (t *Tracing) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

func (t *Tracing) span(id string, remove bool) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	span, ok := t.spans[id]
	if ok && remove {
		delete(t.spans, id)
	}
	return span
}
