package tracing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/suborbital/go-kit/observability"
)

const (
	// ExporterCollector ships spans to an otel collector over grpc
	ExporterCollector CollectorType = "collector"
)

type CollectorType string

// Config selects and configures the span exporter
type Config struct {
	Type        CollectorType
	ServiceName string
	Probability float64
	Collector   CollectorConfig
}

type CollectorConfig struct {
	Endpoint string
}

// Tracer is the module-wide tracer; it defaults to a noop tracer until
// SetupTracing replaces it
var Tracer trace.Tracer = trace.NewNoopTracerProvider().Tracer("qnet-tracing")

// SetupTracing configures open telemetry with the selected exporter.
// Returns the tracer provider so callers can flush it on shutdown.
func SetupTracing(config Config, logger zerolog.Logger) (*sdkTrace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var traceProvider *sdkTrace.TracerProvider
	var err error

	ll := logger.With().Str("tracerType", string(config.Type)).Logger()

	switch config.Type {
	case ExporterCollector:
		ll.Info().Msg("configuring collector exporter for tracing")

		conn, err := observability.GrpcConnection(ctx, config.Collector.Endpoint)
		if err != nil {
			ll.Err(err).Msg("observability.GrpcConnection failed")
			return nil, errors.Wrap(err, "collector GrpcConnection")
		}

		traceProvider, err = observability.OtelTracer(ctx, conn, observability.TracingConfig{
			Probability: config.Probability,
			ServiceName: config.ServiceName,
		})
		if err != nil {
			ll.Err(err).Msg("observability.OtelTracer failed")
			return nil, errors.Wrap(err, "observability.OtelTracer")
		}
	default:
		ll.Warn().Msg("unrecognised tracer type configuration. Defaulting to no tracer")
		fallthrough
	case "none", "":
		// the most default trace provider, nothing is exported
		traceProvider, err = observability.NoopTracer()
		if err != nil {
			return nil, errors.Wrap(err, "noop Tracer")
		}
	}

	Tracer = traceProvider.Tracer("qnet-tracing")

	otel.SetTextMapPropagator(propagation.TraceContext{})

	return traceProvider, nil
}
