package xhttp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngineMiddlewareOrder(t *testing.T) {
	var calls []string
	trace := func(name string) MiddlewareFunc {
		return func(next RequestHandler) RequestHandler {
			return func(ctx *RequestCtx) {
				calls = append(calls, name)
				next(ctx)
			}
		}
	}

	e := CreateServer()
	e.GET("/ping", func(ctx *RequestCtx) {
		calls = append(calls, "handler")
		ctx.SetStatusCode(StatusOK)
	})
	e.Use(trace("first"))
	e.Use(trace("second"))
	e.DoRouting()

	ctx := newTestCtx("GET", "/ping")
	e.Server.Handler(ctx)

	assert.Equal(t, []string{"first", "second", "handler"}, calls)
	assert.Equal(t, StatusOK, ctx.Response.StatusCode())

	calls = nil
	e.DoRouting()
	e.Server.Handler(ctx)
	assert.Equal(t, []string{"first", "second", "handler"}, calls, "routing twice keeps the order")
}

func TestNewServerLimits(t *testing.T) {
	e := NewServer(Limits{ReadTimeout: 3 * time.Second, MaxRequestBodySize: 4096})

	assert.Equal(t, 3*time.Second, e.Server.ReadTimeout)
	assert.Equal(t, DefaultLimits.WriteTimeout, e.Server.WriteTimeout)
	assert.Equal(t, 4096, e.Server.MaxRequestBodySize)
	assert.Equal(t, DefaultLimits.MaxConnsPerIP, e.Server.MaxConnsPerIP)
}

func TestEngineUnroutedRequest(t *testing.T) {
	e := CreateServer()

	ctx := newTestCtx("GET", "/nope")
	e.Server.Handler(ctx)
	assert.Equal(t, StatusNotFound, ctx.Response.StatusCode(), "before routing")

	e.DoRouting()
	ctx.Response.Reset()
	e.Server.Handler(ctx)
	assert.Equal(t, StatusNotFound, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "RouteNotFound")
}
