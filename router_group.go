package chain

import (
	"net/http"
	"strings"
)

// Group registers routes and middlewares under a common path prefix
type Group interface {
	GET(route string, handle any, options ...RouteOption) *Route
	HEAD(route string, handle any, options ...RouteOption) *Route
	OPTIONS(route string, handle any, options ...RouteOption) *Route
	POST(route string, handle any, options ...RouteOption) *Route
	PUT(route string, handle any, options ...RouteOption) *Route
	PATCH(route string, handle any, options ...RouteOption) *Route
	DELETE(route string, handle any, options ...RouteOption) *Route
	Use(args ...any) Group
	Group(route string) Group
	Handle(method string, route string, handle any, options ...RouteOption) *Route
}

type RouterGroup struct {
	p string
	r *Router
}

func (g *RouterGroup) GET(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodGet, route, handle, options...)
}

func (g *RouterGroup) HEAD(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodHead, route, handle, options...)
}

func (g *RouterGroup) OPTIONS(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodOptions, route, handle, options...)
}

func (g *RouterGroup) POST(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodPost, route, handle, options...)
}

func (g *RouterGroup) PUT(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodPut, route, handle, options...)
}

func (g *RouterGroup) PATCH(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodPatch, route, handle, options...)
}

func (g *RouterGroup) DELETE(route string, handle any, options ...RouteOption) *Route {
	return g.Handle(http.MethodDelete, route, handle, options...)
}

func (g *RouterGroup) Group(route string) Group {
	return &RouterGroup{g.p + route, g.r}
}

func (g *RouterGroup) Handle(method string, route string, handle any, options ...RouteOption) *Route {
	return g.r.Handle(method, g.p+route, handle, options...)
}

// Use registers middlewares relative to the group prefix. Without a path, the middleware applies to "prefix/*".
func (g *RouterGroup) Use(args ...any) Group {
	var strs []string
	var rest []any
	for _, arg := range args {
		if s, ok := arg.(string); ok {
			strs = append(strs, s)
		} else {
			rest = append(rest, arg)
		}
	}

	prefix := strings.TrimSuffix(g.p, "/")
	var params []any
	switch len(strs) {
	case 0:
		params = append(params, prefix+"/*")
	case 1:
		params = append(params, prefix+strs[0])
	default:
		params = append(params, strs[0], prefix+strs[1])
	}
	g.r.Use(append(params, rest...)...)
	return g
}
