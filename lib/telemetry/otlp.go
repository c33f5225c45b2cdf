package telemetry

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"dario.cat/mergo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type otlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (c otlpConnConfig) configured() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

// grpc wins when both endpoints are set.
func (c otlpConnConfig) useGrpc() bool {
	return c.GrpcEndpoint != ""
}

func (c otlpConnConfig) logInitialized(signal string) {
	transport, endpoint := "http", c.HttpEndpoint
	if c.useGrpc() {
		transport, endpoint = "grpc", c.GrpcEndpoint
	}
	slog.Info(
		"otlp exporter initialized",
		"signal", signal,
		"type", transport,
		"endpoint", endpoint,
		"headers", len(c.Headers) > 0,
	)
}

type otlpConfig struct {
	Traces  otlpConnConfig `json:"traces"`
	Metrics otlpConnConfig `json:"metrics"`
}

type config struct {
	Otlp otlpConfig `json:"otlp"`
	// Attributes are added to the resource of every span and metric,
	// ex. { "deployment.environment": "cron" }.
	Attributes map[string]string `json:"attributes"`
	// ExportTimeoutSeconds bounds every export, including the flush on exit.
	ExportTimeoutSeconds  int `json:"export_timeout_seconds"`
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

func defaultConfig() config {
	return config{
		ExportTimeoutSeconds:  5,
		MetricIntervalSeconds: 30,
	}
}

// withDefaults fills every unset (zero) field from defaultConfig.
func (c config) withDefaults() (config, error) {
	err := mergo.Merge(&c, defaultConfig())
	return c, err
}

func (c config) exportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutSeconds) * time.Second
}

func (c config) metricInterval() time.Duration {
	return time.Duration(c.MetricIntervalSeconds) * time.Second
}

func newResource(serviceName string, attributes map[string]string) (*resource.Resource, error) {
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, attributes[k]))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, cfg config) (*sdktrace.TracerProvider, error) {
	conn := cfg.Otlp.Traces
	conn.logInitialized("traces")

	var exporter sdktrace.SpanExporter
	var err error
	if conn.useGrpc() {
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(conn.GrpcEndpoint),
			otlptracegrpc.WithHeaders(conn.Headers),
			otlptracegrpc.WithTimeout(cfg.exportTimeout()),
		)
	} else {
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(conn.HttpEndpoint),
			otlptracehttp.WithHeaders(conn.Headers),
			otlptracehttp.WithTimeout(cfg.exportTimeout()),
		)
	}
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(cfg.exportTimeout())),
		sdktrace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, cfg config) (*sdkmetric.MeterProvider, error) {
	conn := cfg.Otlp.Metrics
	conn.logInitialized("metrics")

	var exporter sdkmetric.Exporter
	var err error
	if conn.useGrpc() {
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(conn.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(conn.Headers),
			otlpmetricgrpc.WithTimeout(cfg.exportTimeout()),
		)
	} else {
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(conn.HttpEndpoint),
			otlpmetrichttp.WithHeaders(conn.Headers),
			otlpmetrichttp.WithTimeout(cfg.exportTimeout()),
		)
	}
	if err != nil {
		return nil, err
	}

	// also flushed on Shutdown
	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(cfg.metricInterval()),
		sdkmetric.WithTimeout(cfg.exportTimeout()),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r),
	), nil
}
