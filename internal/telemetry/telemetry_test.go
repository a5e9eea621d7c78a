package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_Console(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := Setup(context.Background(), Config{Exporter: ExporterConsole, Version: "test", Output: &buf})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "desec.GetDomains")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "desec.GetDomains")
	assert.Contains(t, buf.String(), "desecctl")
}

func TestSetup_None(t *testing.T) {
	for _, exporter := range []string{"", ExporterNone} {
		tp, shutdown, err := Setup(context.Background(), Config{Exporter: exporter})
		require.NoError(t, err)
		assert.Equal(t, tp, otel.GetTracerProvider())

		_, span := tp.Tracer("test").Start(context.Background(), "noop")
		assert.True(t, span.SpanContext().IsValid())
		span.End()
		require.NoError(t, shutdown(context.Background()))
	}
}

func TestSetup_OTLP(t *testing.T) {
	// The gRPC exporter connects lazily, so construction succeeds without a collector.
	_, shutdown, err := Setup(context.Background(), Config{Exporter: ExporterOTLP, Endpoint: "127.0.0.1:4317"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, _, err := Setup(context.Background(), Config{Exporter: "jaeger"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jaeger")
}
