package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	obsctx "github.com/smallbiznis/payrail/internal/observability/context"
)

// Module provides the process logger.
var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(func(log *zap.Logger) {
		zap.ReplaceGlobals(log)
	}),
)

// New builds the production logger.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// FromContext returns the global logger enriched with the request id and
// the active trace and span ids, when the context carries them.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	span := trace.SpanContextFromContext(ctx)
	if !span.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
