package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestParseExporter(t *testing.T) {
	for raw, want := range map[string]Exporter{"": ExporterOTLP, "OTLP": ExporterOTLP, "stdout": ExporterStdout, " none ": ExporterNone} {
		got, err := ParseExporter(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
	_, err := ParseExporter("zipkin")
	require.Error(t, err)
}

func TestInit_WithoutExporter(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var logs bytes.Buffer
	instruments, shutdown, err := Init(context.Background(), Settings{
		ServiceName: "pedidos-test",
		Environment: "test",
		LogLevel:    slog.LevelWarn,
		Exporter:    ExporterNone,
		LogOutput:   &logs,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, shutdown(context.Background())) })

	_, span := instruments.Tracer("orders").Start(context.Background(), "op")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	instruments.Logger.Info("dropped")
	instruments.Logger.Warn("kept")
	require.NotContains(t, logs.String(), "dropped")
	require.Contains(t, logs.String(), "kept")
}

func TestInstruments_NilSafe(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("orders"))
	require.NotNil(t, instruments.Meter("orders"))
}
