// OpenTelemetry tracing support for resilient invocation observability.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps OpenTelemetry tracing with invocation-specific helpers.
type Tracer struct {
	tracer trace.Tracer
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return &Tracer{tracer: trace.NewNoopTracerProvider().Tracer("")}
	}
	return globalTracer
}

// NewTracer creates a new tracer with the given name.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// InvocationSpanOptions carries the terminal facts of one invocation.
type InvocationSpanOptions struct {
	Invocation string // invocation id
	Attempts   int    // total attempts made
	Kind       string // failure kind, empty on success
	Results    int    // results forwarded to the caller
}

// StartInvocationSpan starts a span covering one resilient invocation,
// including all its retries.
func (t *Tracer) StartInvocationSpan(ctx context.Context, invocation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "callguard.invoke",
		trace.WithAttributes(attribute.String("callguard.invocation", invocation)),
	)
}

// AddAdmissionEvent records admission of one attempt on the span.
func (t *Tracer) AddAdmissionEvent(span trace.Span, attempt int) {
	span.AddEvent("admitted", trace.WithAttributes(
		attribute.Int("callguard.attempt", attempt),
	))
}

// AddBackoffEvent records a classified failure and the chosen backoff.
func (t *Tracer) AddBackoffEvent(span trace.Span, attempt int, kind string, delay time.Duration) {
	span.AddEvent("backoff", trace.WithAttributes(
		attribute.Int("callguard.attempt", attempt),
		attribute.String("callguard.kind", kind),
		attribute.String("callguard.delay", delay.String()),
	))
}

// EndInvocationSpan finalizes the invocation span.
func (t *Tracer) EndInvocationSpan(span trace.Span, opts InvocationSpanOptions, err error) {
	span.SetAttributes(
		attribute.Int("callguard.attempts", opts.Attempts),
		attribute.Int("callguard.results", opts.Results),
	)
	if opts.Kind != "" {
		span.SetAttributes(attribute.String("callguard.kind", opts.Kind))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
