// Package observability provides OpenTelemetry integration for distributed
// tracing.
//
// Traces are exported over OTLP HTTP to a local collector (an OpenTelemetry
// Collector or any agent speaking OTLP, listening on localhost:4318 by
// default). The collector owns authentication and forwarding; the
// application never holds vendor credentials.
//
// # Configuration
//
// Config file (~/.carebot/config.yaml):
//
//	tracing:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  environment: "dev"
//	  service_name: "carebot"
//
// Setup degrades gracefully: when the exporter cannot be constructed the
// process runs untraced rather than failing to start.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/carebyte/carebot/internal/log"
)

// DefaultEndpoint is the default collector OTLP HTTP endpoint.
const DefaultEndpoint = "localhost:4318"

// defaultServiceName tags spans when no service name is configured.
const defaultServiceName = "carebot"

// Config for the tracing setup.
type Config struct {
	// Endpoint is the collector OTLP HTTP endpoint (default: localhost:4318).
	Endpoint string
	// Environment is the deployment environment tag (dev, staging, prod).
	Environment string
	// ServiceName is the service name shown in the tracing backend.
	ServiceName string
}

// Setup installs a global tracer provider exporting to the configured
// collector. Returns a shutdown function that flushes pending spans; callers
// must invoke it on process exit.
//
// Exporter construction failure is not fatal: the returned shutdown is a
// no-op and the process continues untraced.
func Setup(ctx context.Context, cfg Config, logger log.Logger) (shutdown func(context.Context) error, err error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	// localhost collector, no TLS
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		logger.Warn("failed to build trace resource, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", serviceName,
		"environment", cfg.Environment,
	)

	return tp.Shutdown, nil
}
