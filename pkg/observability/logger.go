package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"

	// AttrTree names the tree a record or data point is about.
	AttrTree = "tree"
)

type treeKey struct{}

// ContextWithTree returns a copy of ctx naming the tree that work under it
// operates on. Records logged with the returned context carry the name.
func ContextWithTree(ctx context.Context, tree string) context.Context {
	return context.WithValue(ctx, treeKey{}, tree)
}

// TreeFromContext returns the tree named by ContextWithTree, if any.
func TreeFromContext(ctx context.Context) (string, bool) {
	tree, ok := ctx.Value(treeKey{}).(string)

	return tree, ok && tree != ""
}

// LogHandler is the [slog.Handler] behind every ordmap logger.
//
// Process attributes (service, mode, env) are bound once so they stay at the
// top level of grouped records. Per-record attributes come from the context:
// the active span's trace_id and span_id, and the tree set by ContextWithTree.
type LogHandler struct {
	inner slog.Handler
}

// NewLogHandler wraps inner for the given service and run mode. An empty env
// is left out.
func NewLogHandler(inner slog.Handler, service, env string, appMode AppMode) *LogHandler {
	process := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		process = append(process, slog.String(attrEnv, env))
	}

	return &LogHandler{inner: inner.WithAttrs(process)}
}

// Enabled delegates to the inner handler.
func (lh *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lh.inner.Enabled(ctx, level)
}

// Handle adds the context attributes to record and passes it on.
func (lh *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if tree, ok := TreeFromContext(ctx); ok {
		record.AddAttrs(slog.String(AttrTree, tree))
	}

	if err := lh.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (lh *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{inner: lh.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (lh *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{inner: lh.inner.WithGroup(name)}
}
