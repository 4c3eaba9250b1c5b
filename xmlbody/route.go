package xmlbody

import (
	"net/http"

	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/nonjson"
)

// Endpoint reads bodies with the nonjson default registry, where DefaultDecoder is registered
var Endpoint = nonjson.Endpoint{MediaType: MediaTypeApplication}

// Setup makes XML the response format of every route without chain.ResponseClass
func Setup(router *chain.Router) {
	router.DefaultRenderer = DefaultResponse
}

// Handle registers a typed endpoint reading an XML body
//
//	xmlbody.POST(router, "/ping", func(ctx *chain.Context, in *Ping) (*Pong, error) {
//		return &Pong{Message: in.Message}, nil
//	}, chain.ResponseClass(xmlbody.AppResponse))
func Handle[In, Out any](group chain.Group, method, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return nonjson.Handle(group, Endpoint, method, path, handler, options...)
}

func GET[In, Out any](group chain.Group, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return Handle(group, http.MethodGet, path, handler, options...)
}

func POST[In, Out any](group chain.Group, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return Handle(group, http.MethodPost, path, handler, options...)
}

func PUT[In, Out any](group chain.Group, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return Handle(group, http.MethodPut, path, handler, options...)
}

func PATCH[In, Out any](group chain.Group, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return Handle(group, http.MethodPatch, path, handler, options...)
}

func DELETE[In, Out any](group chain.Group, path string, handler nonjson.Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	return Handle(group, http.MethodDelete, path, handler, options...)
}
