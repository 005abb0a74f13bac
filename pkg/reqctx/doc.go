// Package reqctx carries request-scoped data through context.Context:
// request metadata stamped by HTTP middleware, authentication claims, and
// trace identifiers for log correlation.
//
// Context keys are unexported types; all access goes through the typed
// setters and getters:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{
//	    RequestID:   rid,
//	    ClientIP:    c.IP(),
//	    UserAgent:   c.Get("User-Agent"),
//	    RequestedAt: time.Now(),
//	})
//
//	meta, ok := reqctx.RequestMetaFromContext(ctx)
//	claims := reqctx.ClaimsFromContext(ctx)
//
// RequestMeta is present on every request that passed the middleware chain.
// Claims are present only on authenticated requests. Trace identifiers come
// from the active OpenTelemetry span and are empty when tracing is off.
package reqctx
