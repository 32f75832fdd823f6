package tracer

import (
	"context"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer installs an OTLP/HTTP tracer provider when tracing is enabled.
// The returned function flushes pending spans.
func InitTracer(cfg config.AppConfig, log logger.ILogger) ShutdownFunc {
	if !cfg.OtelEnabled {
		log.Info("tracer", "OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)", nil)
		return noopShutdown
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("tracer", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{"error": err.Error()})
		return noopShutdown
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.Name),
			semconv.ServiceVersionKey.String(cfg.Version),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("tracer", "OpenTelemetry tracer initialized", map[string]interface{}{"endpoint": cfg.OtelEndpoint})

	return tp.Shutdown
}
