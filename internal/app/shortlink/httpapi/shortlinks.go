package httpapi

import (
	"log/slog"
	"net/http"

	"edgelink.local/gee"
	"edgelink.local/internal/app/shortlink"
)

// NewCreateHandler allocates a short link. Failures use the same envelope as
// success with success=false and the status of the error kind.
func NewCreateHandler(alloc *shortlink.Allocator) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var in shortlink.AllocateInput
		if err := ctx.ShouldBindJSON(&in); err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, shortlink.Envelope{Message: "invalid json: " + err.Error()})
			return
		}
		if in.Alias != "" && shortlink.ReservedAlias(in.Alias) {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, shortlink.Envelope{Message: "alias " + in.Alias + " is reserved"})
			return
		}
		if !shortlink.RoutableAlias(in.Alias) {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, shortlink.Envelope{Message: "alias must not contain '/'"})
			return
		}

		res, err := alloc.Allocate(ctx.Req.Context(), in.Request())
		if err != nil {
			env, status := shortlink.FailureEnvelope(err)
			if status >= http.StatusInternalServerError {
				slog.Error("allocate failed",
					"request_id", ctx.Req.Header.Get("X-Request-ID"),
					"kind", shortlink.KindOf(err),
					"err", err)
			}
			ctx.AbortWithStatusJSON(status, env)
			return
		}

		ctx.JSON(http.StatusCreated, shortlink.SuccessEnvelope(res))
	}
}

// NewRedirectHandler writes the resolver's Response verbatim.
func NewRedirectHandler(res *shortlink.Resolver) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		resp := res.Resolve(ctx.Req.Context(), ctx.Param("code"))
		writeResponse(ctx, resp)
	}
}

// NewPreflightHandler answers CORS preflight for redirect paths.
func NewPreflightHandler() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		ctx.SetHeaders(shortlink.PreflightHeaders())
		ctx.Status(http.StatusNoContent)
	}
}

func writeResponse(ctx *gee.Context, resp shortlink.Response) {
	ctx.SetHeaders(resp.Headers)
	ctx.Data(resp.Status, []byte(resp.Body))
}
