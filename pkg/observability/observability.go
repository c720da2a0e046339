// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability wires OpenTelemetry tracing and Prometheus metrics
// across the module, defaulting to no-ops when not explicitly configured.
// Mirrors the teacher's pkg/observability.InitGlobalTracer /
// GetGlobalMetrics pattern, generalized to this module's components.
package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exporter selects where finished spans are sent.
type Exporter string

const (
	// ExporterStdout writes spans as indented JSON to stdout. Useful for
	// local runs and the fake-backed test suite.
	ExporterStdout Exporter = "stdout"
	// ExporterOTLP ships spans to a collector over OTLP/gRPC.
	ExporterOTLP Exporter = "otlp"
)

// TracingConfig controls whether spans are recorded or discarded.
type TracingConfig struct {
	Enabled       bool
	ServiceName   string
	SamplingRatio float64
	Exporter      Exporter
	// OTLPEndpoint is passed to otlptracegrpc.WithEndpoint when Exporter is
	// ExporterOTLP. Empty uses the exporter's default (localhost:4317).
	OTLPEndpoint string
}

var (
	mu       sync.RWMutex
	provider trace.TracerProvider = noop.NewTracerProvider()
)

// InitTracing installs the global tracer provider. Called once at process
// startup by the harness (cmd/agentcore); libraries never call this
// themselves. Passing a disabled config restores the no-op provider.
func InitTracing(cfg TracingConfig) (shutdown func(context.Context) error, err error) {
	mu.Lock()
	defer mu.Unlock()

	if !cfg.Enabled {
		provider = noop.NewTracerProvider()
		return func(context.Context) error { return nil }, nil
	}

	ratio := cfg.SamplingRatio
	if ratio <= 0 {
		ratio = 1.0
	}
	name := cfg.ServiceName
	if name == "" {
		name = "agentcore"
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(name)))
	if err != nil {
		return nil, err
	}

	exporter, err := newSpanExporter(cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(ratio)),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	provider = tp
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func newSpanExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracegrpc.New(context.Background(), opts...)
	case ExporterStdout, "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("observability: unknown exporter %q", cfg.Exporter)
	}
}

// Tracer returns a named tracer from the currently installed provider.
func Tracer(name string) trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return provider.Tracer(name)
}
