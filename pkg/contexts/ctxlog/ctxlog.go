// Package ctxlog carries a go-kit logger on a context.
package ctxlog

import (
	"context"

	"github.com/go-kit/kit/log"
	"go.opencensus.io/trace"
)

type key int

const loggerKey key = 0

func NewContext(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// With returns a context whose logger has keyvals appended. If there
// is no logger on ctx, ctx is returned unchanged.
func With(ctx context.Context, keyvals ...interface{}) context.Context {
	v, ok := ctx.Value(loggerKey).(log.Logger)
	if !ok {
		return ctx
	}
	return NewContext(ctx, log.With(v, keyvals...))
}

// FromContext returns the logger on ctx, or a nop logger. Trace ids
// are added when ctx carries an initialized span.
func FromContext(ctx context.Context) log.Logger {
	v, ok := ctx.Value(loggerKey).(log.Logger)
	if !ok {
		return log.NewNopLogger()
	}
	span := trace.FromContext(ctx)
	if span == nil {
		return v
	}

	sc := span.SpanContext()
	if isTraceUninitialized(sc) {
		return v
	}

	return log.With(
		v,
		"trace_id", sc.TraceID.String(),
		"span_id", sc.SpanID.String(),
		"trace_is_sampled", sc.IsSampled(),
	)
}

func isTraceUninitialized(sc trace.SpanContext) bool {
	for _, b := range sc.TraceID {
		if b != 0 {
			return false
		}
	}
	return true
}
