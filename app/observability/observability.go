// Package observability sets up logging, tracing and metrics for the bot.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls how observability is initialised.
type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	LogLevel        string
	LogFormat       string // json|text
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceSampleRate float64
}

// Provider holds the process-wide logger and tracer provider.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// Registry holds the instruments handed to modules.
type Registry struct {
	Tracer     trace.Tracer
	Prometheus *prometheus.Registry
}

// Observability bundles the logger, tracer and metrics registry.
type Observability struct {
	Provider Provider
	Registry Registry
}

// Init builds an Observability from cfg. Tracing is exported over OTLP when
// an endpoint is configured and disabled otherwise.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	logger := NewLogger(cfg)

	var tp trace.TracerProvider = noop.NewTracerProvider()
	shutdown := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return Observability{}, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

		rate := cfg.TraceSampleRate
		if rate <= 0 {
			rate = 1
		}
		sdkProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
			sdktrace.WithResource(resource.NewSchemaless(
				attribute.String("service.name", cfg.ServiceName),
				attribute.String("service.version", cfg.Version),
				attribute.String("deployment.environment", cfg.Environment),
			)),
		)
		otel.SetTracerProvider(sdkProvider)
		tp, shutdown = sdkProvider, sdkProvider.Shutdown
	}

	registry := prometheus.NewRegistry()
	if err := errors.Join(
		registry.Register(collectors.NewGoCollector()),
		registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	); err != nil {
		return Observability{}, fmt.Errorf("failed to register runtime collectors: %w", err)
	}

	logger.InfoContext(ctx, "Observability initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing", cfg.OTLPEndpoint != ""),
	)

	return Observability{
		Provider: Provider{Logger: logger, TracerProvider: tp, shutdown: shutdown},
		Registry: Registry{Tracer: tp.Tracer(cfg.ServiceName), Prometheus: registry},
	}, nil
}

// NewNoop returns an Observability that discards traces and logs to stderr.
// Intended for tools and tests.
func NewNoop() Observability {
	tp := noop.NewTracerProvider()
	return Observability{
		Provider: Provider{
			Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
			TracerProvider: tp,
			shutdown:       func(context.Context) error { return nil },
		},
		Registry: Registry{Tracer: tp.Tracer("noop"), Prometheus: prometheus.NewRegistry()},
	}
}

// Shutdown flushes pending spans.
func (o Observability) Shutdown(ctx context.Context) error {
	if o.Provider.shutdown == nil {
		return nil
	}
	return o.Provider.shutdown(ctx)
}

// NewLogger builds the process logger. Production defaults to JSON.
func NewLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		if cfg.Environment == "development" {
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		}
	}

	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
