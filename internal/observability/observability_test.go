package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"github.com/StinkyLord/notice-builder/internal/observability"
)

func TestTracingHandlerInjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "svc", "1.2.3"))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", rec["trace_id"])
	assert.Equal(t, "0102030405060708", rec["span_id"])
	assert.Equal(t, "svc", rec["service"])
	assert.Equal(t, "1.2.3", rec["version"])
}

func TestTracingHandlerWithoutSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "svc", ""))
	logger.WithGroup("g").Info("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.NotContains(t, rec, "trace_id")
	assert.NotContains(t, rec, "version")
	assert.Equal(t, "svc", rec["service"])
	assert.Equal(t, map[string]any{"k": "v"}, rec["g"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel("loud"))
}

func TestInitWithoutEndpoint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true

	providers, err := observability.InitWithWriter(cfg, &buf)
	require.NoError(t, err)

	providers.Logger.Info("started")
	assert.Contains(t, buf.String(), `"service":"notice-builder"`)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestReportMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := observability.NewReportMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	rm.RecordReport(ctx, observability.ReportStats{
		Status:       observability.StatusOK,
		Duration:     20 * time.Millisecond,
		Components:   3,
		Licenses:     2,
		MissingTexts: 1,
	})
	rm.RecordReport(ctx, observability.ReportStats{Status: observability.StatusError, Components: 9})

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))

	sums := map[string]int64{}

	for _, sm := range data.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["notice.reports.total"])
	assert.Equal(t, int64(3), sums["notice.components.total"])
	assert.Equal(t, int64(2), sums["notice.licenses.rendered.total"])
	assert.Equal(t, int64(1), sums["notice.licenses.text_missing.total"])
}

func TestRecordReportNilReceiver(t *testing.T) {
	t.Parallel()

	var rm *observability.ReportMetrics

	assert.NotPanics(t, func() {
		rm.RecordReport(context.Background(), observability.ReportStats{Status: observability.StatusOK})
	})
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t,
		map[string]string{"x-team": "legal", "auth": "token=abc"},
		observability.ParseOTLPHeaders(" x-team = legal ,auth=token=abc,broken"))
}
