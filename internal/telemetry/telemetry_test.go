package telemetry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/padup/padup/internal/errors"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return rec
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestInitProvider_Disabled(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := InitProvider(context.Background(), Config{Service: "padup"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := StartCommandSpan(context.Background(), "padup whoami")
	assert.False(t, span.SpanContext().IsValid(), "disabled tracing records nothing")
	span.End()
}

func TestInitProvider_EnabledWithoutEndpoint(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := InitProvider(context.Background(), Config{
		Service:     "padup",
		Version:     "1.0.0",
		Environment: "staging",
		Enabled:     true,
		SampleRate:  1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := StartCommandSpan(context.Background(), "padup whoami")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
	span.End()
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestIsLoopback(t *testing.T) {
	for in, want := range map[string]bool{
		"localhost:4318":        true,
		"127.0.0.1:4318":        true,
		"[::1]:4318":            true,
		"localhost":             true,
		"otel.example.com:4318": false,
		"10.0.0.5:4318":         false,
	} {
		assert.Equal(t, want, isLoopback(in), in)
	}
}

func TestResourceAttributes(t *testing.T) {
	got := resourceAttributes(Config{Service: "padup", Environment: "production"})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("service.name", "padup"),
		attribute.String("deployment.environment", "production"),
	}, got)
}

func TestSpans(t *testing.T) {
	rec := recordSpans(t)

	ctx, cmd := StartCommandSpan(context.Background(), "padup book")
	_, api := StartAPISpan(ctx, "POST", "/bookings")
	api.End()
	_, flow := StartFlowSpan(ctx, "login")
	flow.End()
	cmd.End()

	spans := rec.Ended()
	require.Len(t, spans, 3)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		byName[s.Name()] = s
	}

	root := byName["padup book"]
	require.NotNil(t, root)
	assert.Equal(t, "padup book", attrs(root)["padup.command"].AsString())

	req := byName["POST /bookings"]
	require.NotNil(t, req)
	assert.Equal(t, trace.SpanKindClient, req.SpanKind())
	assert.Equal(t, "/bookings", attrs(req)["http.route"].AsString())
	assert.Equal(t, root.SpanContext().SpanID(), req.Parent().SpanID())

	f := byName["flow login"]
	require.NotNil(t, f)
	assert.Equal(t, "login", attrs(f)["padup.flow"].AsString())
}

func TestRecordOutcome(t *testing.T) {
	rec := recordSpans(t)

	_, ok := StartCommandSpan(context.Background(), "ok")
	RecordSuccess(ok, attribute.Int("count", 2))
	ok.End()

	_, coded := StartCommandSpan(context.Background(), "coded")
	RecordError(coded, errors.New(errors.ErrCodeAuthRejected, "session rejected"))
	coded.End()

	_, plain := StartCommandSpan(context.Background(), "plain")
	RecordError(plain, fmt.Errorf("boom"))
	RecordError(plain, nil)
	plain.End()

	spans := rec.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.EqualValues(t, 2, attrs(spans[0])["count"].AsInt64())

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, string(errors.ErrCodeAuthRejected), attrs(spans[1])["padup.error_code"].AsString())
	assert.Len(t, spans[1].Events(), 1)

	assert.Equal(t, codes.Error, spans[2].Status().Code)
	_, hasCode := attrs(spans[2])["padup.error_code"]
	assert.False(t, hasCode)
}
