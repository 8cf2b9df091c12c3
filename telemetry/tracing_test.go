package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetTracer_DefaultNoop(t *testing.T) {
	SetGlobalTracer(nil)
	tr := GetTracer()
	if tr == nil {
		t.Fatal("expected a tracer, got nil")
	}

	// The noop tracer must accept the full helper surface without panicking.
	ctx, span := tr.StartInvocationSpan(context.Background(), "inv-1")
	if ctx == nil {
		t.Fatal("expected context from span start")
	}
	tr.AddAdmissionEvent(span, 0)
	tr.AddBackoffEvent(span, 0, "server", 2*time.Second)
	tr.EndInvocationSpan(span, InvocationSpanOptions{
		Invocation: "inv-1",
		Attempts:   2,
		Kind:       "server",
	}, errors.New("boom"))
}

func TestSetGlobalTracer(t *testing.T) {
	custom := NewTracer("test")
	SetGlobalTracer(custom)
	defer SetGlobalTracer(nil)

	if got := GetTracer(); got != custom {
		t.Error("expected the registered tracer back")
	}
}
