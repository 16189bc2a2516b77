package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &LoggerClient{Zap: zap.New(core), tracingEnabled: tracing}, logs
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestLoggerClient_FieldsAndError(t *testing.T) {
	l, logs := newObservedLogger(false)

	l.Error("upsert failed", errors.New("boom"), map[string]interface{}{"collection": "documents"})

	entries := logs.All()
	assert.Len(t, entries, 1)
	ctxMap := entries[0].ContextMap()
	assert.Equal(t, "boom", ctxMap["error"])
	assert.Equal(t, "documents", ctxMap["collection"])
}

func TestLoggerClient_WithContextAddsTraceIDs(t *testing.T) {
	l, logs := newObservedLogger(true)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoWithContext(ctx, "retrieval finished", nil, nil)
	l.InfoWithContext(context.Background(), "no span", nil, nil)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestLoggerClient_TracingDisabledSkipsTraceIDs(t *testing.T) {
	l, logs := newObservedLogger(false)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	l.WarnWithContext(ctx, "slow search", nil, nil)

	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "привет...", Truncate("приветствую", 6))
	assert.Equal(t, "keep", Truncate("keep", 0))
}
