// Copyright 2014 Manu Martinez-Almeida. All rights reserved.
// see: https://github.com/gin-gonic/gin/blob/master/binding/binding.go
package chain

import (
	"errors"
	"net/http"

	"github.com/nidorx/chain-xml/pkg"
)

// Binding describes the interface which needs to be implemented for binding the
// data present in the request body to struct instances.
type Binding interface {
	Bind(*Context, any) error
}

var (
	BindingJSON    Binding = jsonBinding{}    // json
	BindingDefault Binding = defaultBinding{} // selected by the request Content-Type
)

var bindings = &pkg.MediaTypeStore[Binding]{}

func init() {
	if err := RegisterBinding(BindingJSON, "application/json", "*+json"); err != nil {
		panic(err)
	}
}

// RegisterBinding associates a binding with media type patterns ("application/xml", "text/*", "*+xml").
// Used by BindingDefault.
func RegisterBinding(binding Binding, contentTypes ...string) error {
	for _, contentType := range contentTypes {
		if err := bindings.Insert(contentType, binding); err != nil {
			return err
		}
	}
	return nil
}

// BindingFor returns the binding registered for the media type, nil if none
func BindingFor(contentType string) Binding {
	return bindings.Match(MediaType(contentType))
}

type defaultBinding struct{}

func (defaultBinding) Bind(ctx *Context, obj any) error {
	if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead {
		return nil
	}
	binding := BindingFor(ctx.GetContentType())
	if binding == nil {
		return ErrUnsupportedMediaType
	}
	return binding.Bind(ctx, obj)
}

// Bind checks the Method and Content-Type to select a binding engine automatically,
// Depending on the "Content-Type" header different bindings are used, for example:
//
//	"application/json" --> JSON binding
//	"application/xml"  --> XML binding (when registered)
//
// It writes an error response if input is not valid.
func (ctx *Context) Bind(obj any) error {
	return ctx.MustBindWith(obj, BindingDefault)
}

// ShouldBind checks the Method and Content-Type to select a binding engine automatically.
// Like c.Bind() but this method does not write the error response if input is not valid.
func (ctx *Context) ShouldBind(obj any) error {
	return ctx.ShouldBindWith(obj, BindingDefault)
}

// ShouldBindWith binds the passed struct pointer using the specified binding engine.
func (ctx *Context) ShouldBindWith(obj any, b Binding) error {
	if err := b.Bind(ctx, obj); err != nil {
		return err
	}
	return Validate(obj)
}

// MustBindWith binds the passed struct pointer using the specified binding engine.
// It will write the error response if any error occurs (400 for errors without a status code).
func (ctx *Context) MustBindWith(obj any, b Binding) error {
	if err := ctx.ShouldBindWith(obj, b); err != nil {
		var sc StatusCoder
		if errors.As(err, &sc) {
			DefaultErrorHandler(ctx, err)
		} else {
			DefaultErrorHandler(ctx, NewHTTPError(http.StatusBadRequest, err.Error()))
		}
		return err
	}
	return nil
}

// BindJSON is a shortcut for c.MustBindWith(obj, BindingJSON).
func (ctx *Context) BindJSON(obj any) error {
	return ctx.MustBindWith(obj, BindingJSON)
}

// ShouldBindJSON is a shortcut for c.ShouldBindWith(obj, BindingJSON).
func (ctx *Context) ShouldBindJSON(obj any) error {
	return ctx.ShouldBindWith(obj, BindingJSON)
}
