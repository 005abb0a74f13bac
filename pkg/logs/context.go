package logs

import (
	"context"
	"log/slog"

	"github.com/bookline/bookline_backend/pkg/reqctx"
)

// contextHandler stamps correlation ids from the record's context onto
// every line: the request id set by the HTTP middleware and, when a span
// is recording, the OpenTelemetry trace and span ids. Records logged
// without a context pass through unchanged.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if tid := reqctx.TraceIDFromContext(ctx); tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
		if sid := reqctx.SpanIDFromContext(ctx); sid != "" {
			r.AddAttrs(slog.String("span_id", sid))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
