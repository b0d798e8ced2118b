package otellib

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxLoggerKey struct{}
type ctxLoggerValue struct {
	logger *zap.Logger
}

var loggerKey ctxLoggerKey

const (
	traceIDField = "trace.id"
	spanIDField  = "span.id"
)

// WithLogger stores the logger in the context, tagged with the current
// trace and span ids when the context carries a valid span context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		logger = logger.With(
			zap.String(traceIDField, sc.TraceID().String()),
			zap.String(spanIDField, sc.SpanID().String()),
		)
	}
	return context.WithValue(ctx, loggerKey, ctxLoggerValue{logger: logger})
}

// GetLogger ...
func GetLogger(ctx context.Context) *zap.Logger {
	v, ok := ctx.Value(loggerKey).(ctxLoggerValue)
	if !ok {
		return zap.NewNop()
	}
	return v.logger
}
