package httpapi

import (
	"net/http"

	"edgelink.local/gee"
	"edgelink.local/internal/app/shortlink"
)

// RegisterAPIRoutes mounts the JSON API under api (normally /api/v1).
func RegisterAPIRoutes(api *gee.RouterGroup, alloc *shortlink.Allocator) {
	api.POST("/shortlinks", NewCreateHandler(alloc))
}

// RegisterPublicRoutes mounts the redirect entry on the root so short links can
// be typed straight into a browser.
func RegisterPublicRoutes(engine *gee.Engine, res *shortlink.Resolver) {
	engine.GET("/healthz", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	redirect := NewRedirectHandler(res)
	engine.GET("/", redirect)
	engine.GET("/:code", redirect)
	engine.OPTIONS("/:code", NewPreflightHandler())
	// unmatched paths answer like an unknown code so browsers still see CORS headers
	engine.NoRoute(func(ctx *gee.Context) {
		writeResponse(ctx, shortlink.NotFoundResponse())
	})
}
