package httpmiddleware

import (
	"edgelink.local/gee"
	"go.opentelemetry.io/otel/trace"
)

// TraceName renames the otelhttp server span to "METHOD /route/:pattern".
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if ctx.RoutePattern != "" {
			span := trace.SpanFromContext(ctx.Req.Context())
			span.SetName(ctx.Method + " " + ctx.RoutePattern)
		}
		ctx.Next()
	}
}
