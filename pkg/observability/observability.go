// Package observability bundles the logger, tracer and metrics registry
// handed to every module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects log format and verbosity.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Observability is passed by value into module constructors.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  ChallengeMetrics
}

// Init builds the production observability stack. Production environments
// log JSON; everything else logs text.
func Init(cfg Config) Observability {
	return initWithWriter(cfg, os.Stdout)
}

func initWithWriter(cfg Config, w io.Writer) Observability {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Environment, "production") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pic-perfect"
	}

	logger := slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("environment", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(serviceName),
		Registry: registry,
		Metrics:  NewPrometheusMetrics(registry, "picperfect"),
	}
}

// NewTestObservability returns a discard logger, noop tracer and noop metrics.
func NewTestObservability() Observability {
	return Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Registry: prometheus.NewRegistry(),
		Metrics:  NewNoop(),
	}
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
