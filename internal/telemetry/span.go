package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/padup/padup/internal/errors"
)

const scope = "github.com/padup/padup"

func start(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(scope).Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// StartCommandSpan starts the root span of one padup invocation, e.g.
// "padup kyc review".
func StartCommandSpan(ctx context.Context, command string) (context.Context, trace.Span) {
	return start(ctx, command, trace.SpanKindInternal, attribute.String("padup.command", command))
}

// StartAPISpan starts a client span for one API request. route is the
// request path with identifiers collapsed, so span names stay bounded.
func StartAPISpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return start(ctx, method+" "+route, trace.SpanKindClient,
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
	)
}

// StartFlowSpan starts a span for one submission of an auth flow.
func StartFlowSpan(ctx context.Context, flow string) (context.Context, trace.Span) {
	return start(ctx, "flow "+flow, trace.SpanKindInternal, attribute.String("padup.flow", flow))
}

func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError marks span failed. A coded error adds its code so traces can
// be filtered by failure kind.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("padup.error_code", string(code)))
	}
}
