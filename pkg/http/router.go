package xhttp

import (
	"github.com/fasthttp/router"
	"github.com/kisanpay/kisanpay/pkg/logger"
)

type Router = router.Router

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router whose fallback responses use the same
// {"error","code"} body as the API handlers.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.PanicHandler = PanicHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	writeFallback(ctx, StatusNotFound, "RouteNotFound")
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	writeFallback(ctx, StatusMethodNotAllowed, "MethodNotAllowed")
}

// PanicHandler answers 500 when a route handler panics.
func PanicHandler(ctx *RequestCtx, rcv interface{}) {
	logger.Error("[xhttp] handler panic", "path", string(ctx.Path()), "request_id", RequestID(ctx), "panic", rcv)
	writeFallback(ctx, StatusInternalServerError, "Internal")
}

func writeFallback(ctx *RequestCtx, status int, code string) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyString(`{"error":"` + StatusText(status) + `","code":"` + code + `"}`)
}
