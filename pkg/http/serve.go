package xhttp

import (
	"context"
	"reflect"
	"runtime"
	"time"

	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/valyala/fasthttp"
)

const bufferSize = 16 << 10

type Server = fasthttp.Server

// Limits are the server knobs the binaries tune from config. Zero fields fall
// back to DefaultLimits.
type Limits struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodySize int
	Concurrency        int
	MaxConnsPerIP      int
}

// DefaultLimits suit an API whose request bodies are small JSON documents.
var DefaultLimits = Limits{
	ReadTimeout:        2500 * time.Millisecond,
	WriteTimeout:       2500 * time.Millisecond,
	IdleTimeout:        10 * time.Second,
	MaxRequestBodySize: 1 << 20,
	Concurrency:        30_000,
	MaxConnsPerIP:      10_000,
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits
	if l.ReadTimeout > 0 {
		d.ReadTimeout = l.ReadTimeout
	}
	if l.WriteTimeout > 0 {
		d.WriteTimeout = l.WriteTimeout
	}
	if l.IdleTimeout > 0 {
		d.IdleTimeout = l.IdleTimeout
	}
	if l.MaxRequestBodySize > 0 {
		d.MaxRequestBodySize = l.MaxRequestBodySize
	}
	if l.Concurrency > 0 {
		d.Concurrency = l.Concurrency
	}
	if l.MaxConnsPerIP > 0 {
		d.MaxConnsPerIP = l.MaxConnsPerIP
	}
	return d
}

// Engine couples a router, its middleware chain and a fasthttp server.
type Engine struct {
	*Router
	*Server
	middle []MiddlewareFunc
}

func NewServer(limits Limits) *Engine {
	l := limits.withDefaults()
	return &Engine{
		Router: CreateDefaultRouter(),
		Server: &fasthttp.Server{
			Handler: NotFoundHandler,
			ErrorHandler: func(ctx *RequestCtx, err error) {
				logger.Warn("[xhttp] connection error", "remote", ctx.RemoteAddr().String(), "error", err)
			},
			ReadTimeout:                  l.ReadTimeout,
			WriteTimeout:                 l.WriteTimeout,
			IdleTimeout:                  l.IdleTimeout,
			MaxRequestBodySize:           l.MaxRequestBodySize,
			Concurrency:                  l.Concurrency,
			MaxConnsPerIP:                l.MaxConnsPerIP,
			ReadBufferSize:               bufferSize, // also caps header size
			WriteBufferSize:              bufferSize,
			TCPKeepalive:                 true,
			DisablePreParseMultipartForm: true,
			NoDefaultServerHeader:        true,
			NoDefaultDate:                true,
			CloseOnShutdown:              true,
			Logger:                       logger.GetLogger(),
		},
	}
}

// CreateServer returns an engine with DefaultLimits.
func CreateServer() *Engine {
	return NewServer(DefaultLimits)
}

func (e *Engine) ListenAndServe(addr string) error {
	e.DoRouting()
	logger.Info("[xhttp] server is listening", "addr", addr)
	return e.Server.ListenAndServe(addr)
}

// DoRouting installs the router as the server handler, wrapped by the
// registered middleware. The first middleware registered is the outermost.
func (e *Engine) DoRouting() {
	for method, paths := range e.Router.List() {
		for _, p := range paths {
			logger.Debug("[xhttp] route", "method", method, "path", p)
		}
	}

	h := e.Router.Handler
	for i := len(e.middle) - 1; i >= 0; i-- {
		h = e.middle[i](h)
		logger.Debug("[xhttp] middleware", "position", i+1, "func", runtime.FuncForPC(reflect.ValueOf(e.middle[i]).Pointer()).Name())
	}
	e.Server.Handler = h
}

// Use appends middleware to the chain. Middlewares run in registration order.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (e *Engine) Shutdown(ctx context.Context) error {
	logger.Info("[xhttp] server is shutting down")
	return e.Server.ShutdownWithContext(ctx)
}
