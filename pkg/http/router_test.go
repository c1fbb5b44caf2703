package xhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func serveRoute(r *Router, method, uri string) *fasthttp.RequestCtx {
	ctx := newTestCtx(method, uri)
	r.Handler(ctx)
	return ctx
}

func TestDefaultRouterFallbacks(t *testing.T) {
	r := CreateDefaultRouter()
	r.GET("/accounts", func(ctx *RequestCtx) {
		ctx.SetStatusCode(StatusOK)
	})
	r.GET("/boom", func(ctx *RequestCtx) {
		panic("boom")
	})

	t.Run("unknown route", func(t *testing.T) {
		ctx := serveRoute(r, "GET", "/nope")
		assert.Equal(t, StatusNotFound, ctx.Response.StatusCode())
		assert.JSONEq(t, `{"error":"Not Found","code":"RouteNotFound"}`, string(ctx.Response.Body()))
	})

	t.Run("wrong method", func(t *testing.T) {
		ctx := serveRoute(r, "DELETE", "/accounts")
		assert.Equal(t, StatusMethodNotAllowed, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"code":"MethodNotAllowed"`)
	})

	t.Run("panicking handler", func(t *testing.T) {
		var ctx *fasthttp.RequestCtx
		assert.NotPanics(t, func() { ctx = serveRoute(r, "GET", "/boom") })
		assert.Equal(t, StatusInternalServerError, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"code":"Internal"`)
	})

	t.Run("matched route", func(t *testing.T) {
		ctx := serveRoute(r, "GET", "/accounts")
		assert.Equal(t, StatusOK, ctx.Response.StatusCode())
	})
}
