// Copyright 2022 Alex Rodin. All rights reserved.

package chain

import (
	"context"
	"net/http"
	"reflect"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Router dispatches requests to the registered routes. Path matching is done by chi.
type Router struct {
	mux         *chi.Mux
	contextPool sync.Pool
	mutex       sync.RWMutex
	routes      []*Route
	middlewares []*Middleware
	configure   sync.Once

	// Configurable http.Handler function which is called when no matching route is found. If it is not set,
	// http.NotFound is used.
	NotFoundHandler http.Handler

	// Configurable http.Handler function which is called when the path matches but the method does not.
	MethodNotAllowedHandler http.Handler

	// Function to handle errors returned by handlers and middlewares. DefaultErrorHandler when nil.
	ErrorHandler func(*Context, error)

	// Function to handle panics recovered from http handlers.
	// It should be used to generate a error page and return the http error code 500 (Internal Server Error).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// DefaultRenderer renders the results of typed endpoints that do not define a response class. JSON when nil.
	DefaultRenderer Renderer

	// DisableTracing skips the otelhttp instrumentation of routes registered afterwards
	DisableTracing bool
}

func (r *Router) Group(route string) Group {
	return &RouterGroup{p: route, r: r}
}

// GET is a shortcut for router.Handle(http.MethodGet, route, handle)
func (r *Router) GET(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodGet, route, handle, options...)
}

// HEAD is a shortcut for router.Handle(http.MethodHead, route, handle)
func (r *Router) HEAD(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodHead, route, handle, options...)
}

// OPTIONS is a shortcut for router.Handle(http.MethodOptions, route, handle)
func (r *Router) OPTIONS(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodOptions, route, handle, options...)
}

// POST is a shortcut for router.Handle(http.MethodPost, route, handle)
func (r *Router) POST(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodPost, route, handle, options...)
}

// PUT is a shortcut for router.Handle(http.MethodPut, route, handle)
func (r *Router) PUT(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodPut, route, handle, options...)
}

// PATCH is a shortcut for router.Handle(http.MethodPatch, route, handle)
func (r *Router) PATCH(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodPatch, route, handle, options...)
}

// DELETE is a shortcut for router.Handle(http.MethodDelete, route, handle)
func (r *Router) DELETE(route string, handle any, options ...RouteOption) *Route {
	return r.Handle(http.MethodDelete, route, handle, options...)
}

// Handle registers a new Route for the given method and path.
func (r *Router) Handle(method string, route string, handle any, options ...RouteOption) *Route {
	if method == "" {
		logger.Panic().Msg("method must not be empty")
	}
	if len(route) < 1 || route[0] != '/' {
		logger.Panic().Str("route", route).Msg("path must begin with '/'")
	}
	if handle == nil {
		logger.Panic().Str("route", route).Msg("handle must not be nil")
	}

	entry := &Route{
		Method: method,
		Info:   ParseRouteInfo(route),
		Handle: toHandle(handle),
		router: r,
	}
	for _, option := range options {
		option(entry)
	}

	r.mutex.Lock()
	r.routes = append(r.routes, entry)
	for _, middleware := range r.middlewares {
		entry.addMiddleware(middleware)
	}
	r.mutex.Unlock()

	// chi only routes the standard methods unless told otherwise
	chi.RegisterMethod(method)
	r.getMux().Method(method, entry.Info.Pattern(), r.routeHandler(entry))
	return entry
}

// Routes returns the registered routes, in registration order
func (r *Router) Routes() []*Route {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]*Route(nil), r.routes...)
}

func toHandle(handle any) Handle {
	switch handler := handle.(type) {
	case Handle:
		return handler
	case func(*Context) error:
		return handler
	case func(*Context):
		return func(ctx *Context) error {
			handler(ctx)
			return nil
		}
	case http.Handler:
		return func(ctx *Context) error {
			handler.ServeHTTP(ctx.Writer, withContext(ctx))
			return nil
		}
	case func(w http.ResponseWriter, r *http.Request):
		return func(ctx *Context) error {
			handler(ctx.Writer, withContext(ctx))
			return nil
		}
	case func(w http.ResponseWriter, r *http.Request) error:
		return func(ctx *Context) error {
			return handler(ctx.Writer, withContext(ctx))
		}
	default:
		logger.Panic().
			Str("handler", reflect.TypeOf(handle).String()).
			Msg("invalid handler")
	}
	return nil
}

func withContext(ctx *Context) *http.Request {
	return ctx.Request.WithContext(context.WithValue(ctx.Request.Context(), ContextKey, ctx))
}

// Use registers a middleware that will match requests with the provided path (which is optional and defaults to
// "/*") and method (optional, defaults to any method).
//
//	router.Use(func(ctx *chain.Context, next func() error) error {
//	    return next()
//	})
//
//	router.Use("/api/*", func(ctx *chain.Context, next func() error) error {
//	    return next()
//	})
//
//	router.Use("POST", "/api/*", func(ctx *chain.Context, next func() error) error {
//	    return next()
//	})
func (r *Router) Use(args ...any) Group {
	var path string
	var method string
	var middlewares []func(ctx *Context, next func() error) error

	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case string:
			if path == "" {
				path = arg
			} else {
				method = path
				path = arg
			}
		case func():
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				arg()
				return next()
			})
		case func() error:
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				if err := arg(); err != nil {
					return err
				}
				return next()
			})
		case func(*Context):
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				arg(ctx)
				return next()
			})
		case func(*Context) error:
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				if err := arg(ctx); err != nil {
					return err
				}
				return next()
			})
		case func(*Context, func() error):
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				arg(ctx, next)
				return nil
			})
		case func(func() error):
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				arg(next)
				return nil
			})
		case func(func() error) error:
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				return arg(next)
			})
		case func(*Context, func() error) error:
			middlewares = append(middlewares, arg)
		case MiddlewareWithInitHandler:
			arg.Init(method, path, r)
			middlewares = append(middlewares, arg.Handle)
		case MiddlewareHandler:
			middlewares = append(middlewares, arg.Handle)
		case http.Handler:
			// compatibility with http.Handle
			handler := arg
			middlewares = append(middlewares, func(ctx *Context, next func() error) error {
				spy := &ResponseWriterSpy{ResponseWriter: ctx.Writer}
				handler.ServeHTTP(spy, ctx.Request)
				if spy.wrote {
					return nil
				}
				return next()
			})
		default:
			logger.Panic().
				Str("middleware", reflect.TypeOf(arg).String()).
				Msg("invalid middleware")
		}
	}

	if method == "*" {
		method = ""
	}
	if path == "" || path == "*" {
		path = "/*"
	}
	info := ParseRouteInfo(path)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, handle := range middlewares {
		middleware := &Middleware{Method: method, Path: info, Handle: handle}
		r.middlewares = append(r.middlewares, middleware)

		// add this middleware to all compatible routes
		for _, route := range r.routes {
			route.addMiddleware(middleware)
		}
	}

	return r
}

// ServeHTTP responds to the given request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer r.panicRecover(w, req)
	r.configure.Do(r.configureMux)
	r.getMux().ServeHTTP(w, req)
}

func (r *Router) getMux() *chi.Mux {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.mux == nil {
		r.mux = chi.NewRouter()
	}
	return r.mux
}

func (r *Router) configureMux() {
	mux := r.getMux()
	if r.NotFoundHandler != nil {
		mux.NotFound(r.NotFoundHandler.ServeHTTP)
	}
	if r.MethodNotAllowedHandler != nil {
		mux.MethodNotAllowed(r.MethodNotAllowedHandler.ServeHTTP)
	}
}

func (r *Router) routeHandler(route *Route) http.Handler {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := r.GetContext(req, &ResponseWriterSpy{ResponseWriter: w})
		ctx.route = route
		ctx.MatchedRoutePath = route.Info.Path()
		defer r.PutContext(ctx)

		if err := route.Dispatch(ctx); err != nil {
			r.handleError(ctx, err)
		}

		// if necessary, write header on exit
		ctx.write()
	})

	if !r.DisableTracing {
		handler = otelhttp.NewHandler(handler, route.Method+" "+route.Info.Path())
	}
	return handler
}

func (r *Router) handleError(ctx *Context, err error) {
	if r.ErrorHandler != nil {
		r.ErrorHandler(ctx, err)
	} else {
		DefaultErrorHandler(ctx, err)
	}
}

// GetContext returns a new Context from the pool.
func (r *Router) GetContext(req *http.Request, w http.ResponseWriter) *Context {
	ctx, ok := r.contextPool.Get().(*Context)
	if !ok {
		ctx = &Context{}
	}
	ctx.router = r
	ctx.Writer = w
	ctx.Request = req
	return ctx
}

// PutContext frees up resources of the Context and returns it to the pool.
func (r *Router) PutContext(ctx *Context) {
	ctx.router = nil
	ctx.route = nil
	ctx.Writer = nil
	ctx.Request = nil
	ctx.data = nil
	ctx.MatchedRoutePath = ""
	r.contextPool.Put(ctx)
}

func (r *Router) panicRecover(w http.ResponseWriter, req *http.Request) {
	if rcv := recover(); rcv != nil {
		if r.PanicHandler != nil {
			r.PanicHandler(w, req, rcv)
		} else {
			logger.Error().Interface("panic", rcv).Str("path", req.URL.Path).Msg("recovered from panic")
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
