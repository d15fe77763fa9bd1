package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "grammarcheck"

// Tracer returns the tracer of the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// InitTracing installs an OTLP/gRPC tracer provider when endpoint is set.
// Without an endpoint the global no-op provider stays in place.
func InitTracing(ctx context.Context, endpoint, service string) (ShutdownFunc, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", service),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
