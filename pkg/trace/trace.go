// Package trace provides OpenTelemetry span instrumentation for a pkg/session
// event-to-commit cycle. Grounded on the prior pkg/middleware
// OpenTelemetry middleware (Phase 13 observability), restructured the same
// way pkg/metrics was: the prior version wraps an HTTP-routing next()
// call per request (router.Middleware), but a bridge session has no
// request/response chain to wrap, so this package exposes a Tracer whose
// StartEvent and StartCommit methods pkg/session calls directly around
// handleEvent and commitOnce respectively.
package trace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "loom"

// Config configures a Tracer.
type Config struct {
	TracerName    string
	IncludeViewID bool
}

// Option configures a Config.
type Option func(*Config)

func WithTracerName(name string) Option  { return func(c *Config) { c.TracerName = name } }
func WithIncludeViewID(v bool) Option    { return func(c *Config) { c.IncludeViewID = v } }

func defaultConfig() Config {
	return Config{TracerName: defaultTracerName, IncludeViewID: true}
}

// Tracer wraps an OpenTelemetry tracer bound to one session's event loop. It
// is resolved once from the global tracer provider (otel.Tracer), so the
// caller configures exporters the normal OpenTelemetry way before
// constructing a Tracer, matching the prior comment on OpenTelemetry()
// about configuring a TracerProvider in main().
type Tracer struct {
	config Config
	tracer oteltrace.Tracer
}

// New resolves a Tracer against the current global TracerProvider.
func New(opts ...Option) *Tracer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Tracer{config: config, tracer: otel.Tracer(config.TracerName)}
}

// Span is a started span plus the context carrying it, returned by
// StartEvent so the caller can thread it through any context-aware work the
// event handler performs, and must be ended by calling End.
type Span struct {
	ctx  context.Context
	span oteltrace.Span
}

// StartEvent starts a span named after the bridge event, tagging it with the
// session ID and view ID the event targets.
func (t *Tracer) StartEvent(ctx context.Context, sessionID, eventName string, viewID int64) *Span {
	if t == nil {
		return &Span{ctx: ctx}
	}

	attrs := []attribute.KeyValue{
		attribute.String("loom.session_id", sessionID),
		attribute.String("loom.event", eventName),
	}
	if t.config.IncludeViewID {
		attrs = append(attrs, attribute.Int64("loom.view_id", viewID))
	}

	spanCtx, span := t.tracer.Start(ctx, fmt.Sprintf("loom.%s", eventName),
		oteltrace.WithSpanKind(oteltrace.SpanKindServer),
		oteltrace.WithAttributes(attrs...))
	return &Span{ctx: spanCtx, span: span}
}

// StartCommit starts a span covering one render-and-commit pass.
func (t *Tracer) StartCommit(ctx context.Context, sessionID string) *Span {
	if t == nil {
		return &Span{ctx: ctx}
	}
	spanCtx, span := t.tracer.Start(ctx, "loom.commit",
		oteltrace.WithSpanKind(oteltrace.SpanKindInternal),
		oteltrace.WithAttributes(attribute.String("loom.session_id", sessionID)))
	return &Span{ctx: spanCtx, span: span}
}

// Context returns the context carrying this span, for threading into
// context-aware calls a handler makes (database queries, outbound HTTP).
func (s *Span) Context() context.Context {
	if s == nil || s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// SetOpCount records the number of ops a commit produced.
func (s *Span) SetOpCount(n int) {
	if s != nil && s.span != nil {
		s.span.SetAttributes(attribute.Int("loom.op_count", n))
	}
}

// End records err, if non-nil, as the span's terminal status and ends it.
func (s *Span) End(err error) {
	if s == nil || s.span == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// FromContext retrieves the current span from ctx, for handler code that
// wants to add its own attributes without threading a *Span explicitly.
func FromContext(ctx context.Context) oteltrace.Span {
	return oteltrace.SpanFromContext(ctx)
}
