package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerDefaultsToNoop(t *testing.T) {
	tr := Tracer("test")
	assert.NotNil(t, tr)
	_, span := tr.Start(context.Background(), "op")
	span.End()
}

func TestInitTracingDisabledRestoresNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracingStdoutExporterRecordsSpan(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		Enabled:     true,
		ServiceName: "agentcore-test",
		Exporter:    ExporterStdout,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, shutdown(context.Background())) }()

	_, span := Tracer("test").Start(context.Background(), "op")
	span.End()
}

func TestInitTracingUnknownExporterErrors(t *testing.T) {
	_, err := InitTracing(TracingConfig{Enabled: true, Exporter: "bogus"})
	require.Error(t, err)
}

func TestMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordToolExecution("echo", "ok", 0.01)
	m.RecordAgentIteration()
	m.RecordPolicyDecision("echo", "allow")
}

func TestMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordToolExecution("echo", "ok", 0.01)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
