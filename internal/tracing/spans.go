package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrScriptPath    = "script.path"
	AttrEventName     = "event.name"
	AttrEventSelector = "event.selector"
	AttrNode          = "dom.node"
	AttrMatchCount    = "dom.match_count"
	AttrPrevented     = "event.default_prevented"
	AttrListenerCount = "registry.listener_count"
)

// Span names.
const (
	SpanRun      = "domkit.run"
	SpanScript   = "domkit.script"
	SpanReady    = "domkit.ready"
	SpanDispatch = "domkit.dispatch"
)

// StartSpan starts a span named name with attrs.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
