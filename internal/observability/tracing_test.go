package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func resetGlobalProvider(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	resetGlobalProvider(t)
	otel.SetTracerProvider(noop.NewTracerProvider())

	shutdown, err := Setup(context.Background(), Config{ServiceName: "worldmap", Endpoint: "http://192.0.2.1:4318/v1/traces"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		t.Fatalf("expected no sdk provider to be registered")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	resetGlobalProvider(t)
	otel.SetTracerProvider(noop.NewTracerProvider())

	shutdown, err := Setup(context.Background(), Config{ServiceName: "worldmap", Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		t.Fatalf("expected no sdk provider to be registered")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_RegistersProvider(t *testing.T) {
	resetGlobalProvider(t)

	// Non-routable address so nothing is actually exported.
	shutdown, err := Setup(context.Background(), Config{
		ServiceName:    "worldmap",
		ServiceVersion: "test",
		Enabled:        true,
		Endpoint:       "http://192.0.2.1:4318/v1/traces",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected sdk provider, got %T", otel.GetTracerProvider())
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
