package strictxml

import (
	"context"
	"log/slog"
)

type traceLoggerKey struct{}

// the null logger is a logger that does nothing
var nullLogger = slog.New(slog.DiscardHandler)

// WithTraceLogger returns a context carrying tlog. Parse emits a debug
// record per event through it, which is handy when figuring out why a
// document is rejected. A later call replaces an earlier logger.
func WithTraceLogger(ctx context.Context, tlog *slog.Logger) context.Context {
	return context.WithValue(ctx, traceLoggerKey{}, tlog)
}

// traceLogger returns the logger carried by ctx, scoped to the named
// operation, or a discarding logger when none is attached.
func traceLogger(ctx context.Context, op string) *slog.Logger {
	if tlog, ok := ctx.Value(traceLoggerKey{}).(*slog.Logger); ok {
		return tlog.With(slog.String("op", op))
	}
	return nullLogger
}
