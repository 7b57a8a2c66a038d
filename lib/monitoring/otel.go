/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package monitoring provides OpenTelemetry-based observability for the test runs
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	otellog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cpmntech/vulcan/lib/build"
	"github.com/cpmntech/vulcan/lib/log"
)

const serviceName = "vulcan"

// Config defines monitoring configuration
type Config struct {
	Enabled         bool          // Enable/disable monitoring
	OTLPEndpoint    string        // OTLP gRPC endpoint for traces, metrics, logs
	ServiceName     string        // Service name for telemetry
	ServiceVersion  string        // Service version
	SampleRate      float64       // Trace sampling rate (0.0 to 1.0)
	MetricsInterval time.Duration // Metrics export interval
	EnableTracing   bool
	EnableMetrics   bool
	EnableLogs      bool
}

// DefaultConfig returns default monitoring configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:         false,
		OTLPEndpoint:    "localhost:4317",
		ServiceName:     serviceName,
		ServiceVersion:  build.Version,
		SampleRate:      1.0,
		MetricsInterval: 15 * time.Second,
		EnableTracing:   true,
		EnableMetrics:   true,
		EnableLogs:      true,
	}
}

// Monitor represents the monitoring system, the zero-config Monitor is a no-op
type Monitor struct {
	config        *Config
	tracer        oteltrace.Tracer
	meter         otelmetric.Meter
	metrics       *Metrics
	shutdownFuncs []func(context.Context) error
}

// Initialize sets up OpenTelemetry monitoring
func Initialize(ctx context.Context, config *Config) (*Monitor, error) {
	logger := log.WithFunc("monitoring", "Initialize")
	if config == nil || !config.Enabled {
		logger.Debug("Monitoring: Disabled")
		return Disabled(), nil
	}

	logger.Info("Monitoring: Initializing OpenTelemetry...", "endpoint", config.OTLPEndpoint)

	m := &Monitor{config: config}

	res, err := m.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// One connection is shared by all the exporters
	conn, err := grpc.NewClient(config.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}
	m.shutdownFuncs = append(m.shutdownFuncs, func(context.Context) error { return conn.Close() })

	if config.EnableTracing {
		if err := m.initTracing(ctx, conn, res); err != nil {
			return nil, m.abort(ctx, fmt.Errorf("failed to initialize tracing: %w", err))
		}
		logger.Debug("Monitoring: Tracing initialized")
	}

	if config.EnableMetrics {
		if err := m.initMetrics(ctx, conn, res); err != nil {
			return nil, m.abort(ctx, fmt.Errorf("failed to initialize metrics: %w", err))
		}
		logger.Debug("Monitoring: Metrics initialized")
	}

	if config.EnableLogs {
		if err := m.initLogging(ctx, conn, res); err != nil {
			return nil, m.abort(ctx, fmt.Errorf("failed to initialize logging: %w", err))
		}
		log.SetupOtelIntegration()
		logger.Debug("Monitoring: Logging initialized")
	}

	logger.Info("Monitoring: OpenTelemetry initialization complete")
	return m, nil
}

// abort releases what was created before the initialization failed
func (m *Monitor) abort(ctx context.Context, err error) error {
	if serr := m.Shutdown(context.WithoutCancel(ctx)); serr != nil {
		log.WithFunc("monitoring", "Initialize").Error("Unable to release partially initialized monitoring", "err", serr)
	}
	return err
}

// Disabled returns a monitor which records nothing
func Disabled() *Monitor {
	return &Monitor{
		config: &Config{Enabled: false},
		tracer: noop.NewTracerProvider().Tracer(serviceName),
	}
}

// createResource creates an OpenTelemetry resource with service information
func (m *Monitor) createResource() (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.config.ServiceName),
		semconv.ServiceVersion(m.config.ServiceVersion),
	))
}

func (m *Monitor) initTracing(ctx context.Context, conn *grpc.ClientConn, res *resource.Resource) error {
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(m.config.SampleRate)),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracer = tracerProvider.Tracer(m.config.ServiceName)
	m.shutdownFuncs = append(m.shutdownFuncs, tracerProvider.Shutdown)

	return nil
}

func (m *Monitor) initMetrics(ctx context.Context, conn *grpc.ClientConn, res *resource.Resource) error {
	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(m.config.MetricsInterval))),
	)

	otel.SetMeterProvider(meterProvider)
	m.meter = meterProvider.Meter(m.config.ServiceName)
	m.shutdownFuncs = append(m.shutdownFuncs, meterProvider.Shutdown)

	m.metrics, err = NewMetrics(m.meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	return nil
}

func (m *Monitor) initLogging(ctx context.Context, conn *grpc.ClientConn, res *resource.Resource) error {
	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	if err != nil {
		return fmt.Errorf("failed to create log exporter: %w", err)
	}

	loggerProvider := otellog.NewLoggerProvider(
		otellog.WithProcessor(otellog.NewBatchProcessor(logExporter)),
		otellog.WithResource(res),
	)

	global.SetLoggerProvider(loggerProvider)
	m.shutdownFuncs = append(m.shutdownFuncs, loggerProvider.Shutdown)

	return nil
}

// StartSpan starts a new span with the given name
func (m *Monitor) StartSpan(ctx context.Context, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	if m == nil || m.tracer == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, name, opts...)
}

// Metrics returns the metrics collection, nil when metrics are disabled
func (m *Monitor) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

// Shutdown flushes and stops the exporters in reverse order of creation
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m == nil || len(m.shutdownFuncs) == 0 {
		return nil
	}
	logger := log.WithFunc("monitoring", "Shutdown")
	logger.Debug("Monitoring: Shutting down...")

	var errs []error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.shutdownFuncs = nil

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	logger.Debug("Monitoring: Shutdown complete")
	return nil
}

// IsEnabled returns whether monitoring is enabled
func (m *Monitor) IsEnabled() bool {
	return m != nil && m.config != nil && m.config.Enabled
}

// ScenarioAttrs are the common attributes of the scenario spans and metrics
func ScenarioAttrs(name, uri string, api bool) []attribute.KeyValue {
	kind := "ui"
	if api {
		kind = "api"
	}
	return []attribute.KeyValue{
		attribute.String("scenario.name", name),
		attribute.String("scenario.uri", uri),
		attribute.String("scenario.kind", kind),
	}
}
