package chain

import (
	"maps"
	"reflect"
)

type MiddlewareHandler interface {
	Handle(ctx *Context, next func() error) error
}

type MiddlewareWithInitHandler interface {
	Init(method string, path string, router *Router)
	Handle(ctx *Context, next func() error) error
}

type Handle func(*Context) error

type Middleware struct {
	Method string // empty for any method
	Path   *RouteInfo
	Handle func(ctx *Context, next func() error) error
}

func (m *Middleware) appliesTo(route *Route) bool {
	return (m.Method == "" || m.Method == route.Method) && m.Path.Matches(route.Info)
}

// Route control of a registered route
type Route struct {
	Method           string
	Info             *RouteInfo
	Handle           Handle
	Middlewares      []*Middleware
	middlewaresAdded map[*Middleware]bool
	router           *Router

	// operation metadata, used by the OpenAPI document
	Summary           string
	Description       string
	OperationID       string
	Tags              []string
	Deprecated        bool
	ExcludeFromSchema bool

	// StatusCode is the status of successful responses rendered from endpoint results (default 200)
	StatusCode int

	// Body describes the request body parameter, nil when the route has no body
	Body *BodySpec

	// ResponseModel is the type of the endpoint result
	ResponseModel reflect.Type

	// ResponseClass renders endpoint results. Falls back to Router.DefaultRenderer and then to JSON.
	ResponseClass Renderer
}

// Renderer returns the renderer used for the results of this route
func (r *Route) Renderer() Renderer {
	if r.ResponseClass != nil {
		return r.ResponseClass
	}
	if r.router != nil && r.router.DefaultRenderer != nil {
		return r.router.DefaultRenderer
	}
	return JSONRenderer
}

// Router returns the router that owns this route
func (r *Route) Router() *Router {
	return r.router
}

func (r *Route) addMiddleware(middleware *Middleware) {
	if r.middlewaresAdded == nil {
		r.middlewaresAdded = map[*Middleware]bool{}
	}
	if !r.middlewaresAdded[middleware] && middleware.appliesTo(r) {
		r.middlewaresAdded[middleware] = true
		r.Middlewares = append(r.Middlewares, middleware)
	}
}

// Dispatch ctx into this route
func (r *Route) Dispatch(ctx *Context) error {
	if len(r.Middlewares) == 0 {
		return r.Handle(ctx)
	}

	index := 0
	var next func() error
	next = func() error {
		if index > len(r.Middlewares)-1 {
			// end of middlewares
			return r.Handle(ctx)
		}

		middleware := r.Middlewares[index]
		index++

		var nextErr error
		calledNext := false
		return middleware.Handle(ctx, func() error {
			if calledNext {
				logger.Warn().
					Int("index", index).
					Str("path", r.Info.Path()).
					Msg("calling next() multiple times for route")
				return nextErr
			}
			calledNext = true
			nextErr = next()
			return nextErr
		})
	}
	return next()
}

// RouteOption configures the metadata of a route on registration
type RouteOption func(*Route)

func Summary(summary string) RouteOption {
	return func(r *Route) { r.Summary = summary }
}

func Description(description string) RouteOption {
	return func(r *Route) { r.Description = description }
}

func OperationID(id string) RouteOption {
	return func(r *Route) { r.OperationID = id }
}

func Tags(tags ...string) RouteOption {
	return func(r *Route) { r.Tags = append(r.Tags, tags...) }
}

func Deprecated() RouteOption {
	return func(r *Route) { r.Deprecated = true }
}

// ExcludeFromSchema hides the route from the OpenAPI document
func ExcludeFromSchema() RouteOption {
	return func(r *Route) { r.ExcludeFromSchema = true }
}

// StatusCode sets the status code of successful responses
func StatusCode(code int) RouteOption {
	return func(r *Route) { r.StatusCode = code }
}

// ResponseClass sets the renderer of endpoint results
func ResponseClass(renderer Renderer) RouteOption {
	return func(r *Route) { r.ResponseClass = renderer }
}

// ResponseModel documents the type of the endpoint result. Accepts a value or a reflect.Type.
func ResponseModel(model any) RouteOption {
	return func(r *Route) {
		if t, ok := model.(reflect.Type); ok {
			r.ResponseModel = t
		} else {
			r.ResponseModel = reflect.TypeOf(model)
		}
	}
}

// Body sets the request body parameter of the route. Each route receives its own copy of spec, so one option can
// be shared by many routes. An already known body type is kept when spec.Type is nil.
func Body(spec *BodySpec) RouteOption {
	return func(r *Route) {
		if spec == nil {
			r.Body = nil
			return
		}
		body := *spec
		body.Examples = maps.Clone(spec.Examples)
		body.Extra = maps.Clone(spec.Extra)
		if body.Type == nil && r.Body != nil {
			body.Type = r.Body.Type
		}
		r.Body = &body
	}
}
