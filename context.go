package chain

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type chainContextKey struct{}
type bodyBytesKey struct{}

// ContextKey is the request context key under which the *Context is stored for http.Handler handles.
var ContextKey = chainContextKey{}

// BodyBytesKey indicates a default body bytes key.
var BodyBytesKey = bodyBytesKey{}

// GetContext pulls the chain Context from a request context, or returns nil if none is present.
func GetContext(ctx context.Context) *Context {
	p, _ := ctx.Value(ContextKey).(*Context)
	return p
}

// Context represents a request & response Context.
type Context struct {
	data             map[any]any
	route            *Route
	router           *Router
	MatchedRoutePath string
	Writer           http.ResponseWriter
	Request          *http.Request
}

// Set define um valor compartilhado no contexto de execução da requisição
func (ctx *Context) Set(key any, value any) {
	if ctx.data == nil {
		ctx.data = make(map[any]any)
	}
	ctx.data[key] = value
}

// Get obtém um valor compartilhado no contexto de execução da requisição
func (ctx *Context) Get(key any) (value any, exists bool) {
	if ctx.data == nil {
		return nil, false
	}
	value, exists = ctx.data[key]
	return
}

// GetParam returns the value of the route parameter with the given name.
// If no matching parameter is found, an empty string is returned.
func (ctx *Context) GetParam(name string) string {
	if ctx.Request == nil {
		return ""
	}
	if ctx.route != nil && name == ctx.route.Info.Wildcard() {
		return chi.URLParam(ctx.Request, "*")
	}
	return chi.URLParam(ctx.Request, name)
}

// NewUID get a new KSUID.
func (ctx *Context) NewUID() (uid string) {
	return NewUID()
}

// Router get current router reference
func (ctx *Context) Router() *Router {
	return ctx.router
}

// Route get the matched route
func (ctx *Context) Route() *Route {
	return ctx.route
}

// BeforeSend Registers a callback to be invoked before the response is sent.
//
// Callbacks are invoked in the reverse order they are defined (callbacks defined first are invoked last).
func (ctx *Context) BeforeSend(callback func()) error {
	if spy, is := ctx.Writer.(*ResponseWriterSpy); is {
		return spy.beforeSend(callback)
	}
	return nil
}

func (ctx *Context) AfterSend(callback func()) error {
	if spy, is := ctx.Writer.(*ResponseWriterSpy); is {
		return spy.afterSend(callback)
	}
	return nil
}

func (ctx *Context) write() {
	if spy, is := ctx.Writer.(*ResponseWriterSpy); is {
		if !spy.wrote {
			ctx.WriteHeader(http.StatusOK)
		}
	}
}
