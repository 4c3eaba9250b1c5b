package chain

import (
	"bytes"
	"net/http"
	"strconv"
	"time"
)

var UnixEpoch = time.Unix(0, 0)

// Json encode and writes the data to the connection as part of an HTTP reply.
//
// The Content-Length, Content-Type and ETag headers are added automatically.
func (ctx *Context) Json(v any) {
	if encoded, err := JSONRenderer.Render(v); err != nil {
		ctx.Error(err.Error(), http.StatusInternalServerError)
	} else {
		ctx.SetHeader("Content-Type", JSONRenderer.ContentType())
		ctx.ServeContent(encoded, "", UnixEpoch)
	}
}

// Render serializes v with the renderer and sends it with the given status code.
func (ctx *Context) Render(code int, renderer Renderer, v any) error {
	var body []byte
	if IsBodyAllowedForStatus(code) {
		var err error
		if body, err = renderer.Render(v); err != nil {
			return err
		}
	}
	return ctx.Send(code, renderer.ContentType(), body)
}

// Send writes the status code and body. The body is dropped when the status code does not allow one.
func (ctx *Context) Send(code int, contentType string, body []byte) error {
	if !IsBodyAllowedForStatus(code) {
		ctx.WriteHeader(code)
		return nil
	}
	if contentType != "" {
		ctx.SetHeader("Content-Type", contentType)
	}
	ctx.SetHeader("Content-Length", strconv.Itoa(len(body)))
	ctx.WriteHeader(code)
	if len(body) == 0 || ctx.Request.Method == http.MethodHead {
		return nil
	}
	_, err := ctx.Write(body)
	return err
}

// WriteStarted returns true if the ctx.Writer.Write or ctx.Writer.WriteHeader method was called
func (ctx *Context) WriteStarted() bool {
	if w, ok := ctx.Writer.(*ResponseWriterSpy); ok {
		return w.wrote
	}
	return true
}

// WriteCalled returns true if the ctx.Writer.Write method was called
func (ctx *Context) WriteCalled() bool {
	if w, ok := ctx.Writer.(*ResponseWriterSpy); ok {
		return w.writeCalled
	}
	return true
}

// ServeContent replies to the request using the content provided, handling Range and conditional requests.
// The ETag is the xxHash of the content.
//
// See http.ServeContent
func (ctx *Context) ServeContent(content []byte, name string, modtime time.Time) {
	ctx.SetHeader("ETag", HashXxh64(content))
	ctx.SetHeader("Content-Length", strconv.Itoa(len(content)))
	http.ServeContent(ctx.Writer, ctx.Request, name, modtime, bytes.NewReader(content))
}

// Write writes the data to the connection as part of an HTTP reply.
func (ctx *Context) Write(data []byte) (int, error) {
	return ctx.Writer.Write(data)
}

// Header returns the response header map
func (ctx *Context) Header() http.Header {
	return ctx.Writer.Header()
}

// SetHeader sets the response header entries associated with key to the single element value.
func (ctx *Context) SetHeader(key, value string) {
	ctx.Writer.Header().Set(key, value)
}

// AddHeader adds the key, value pair to the response header.
func (ctx *Context) AddHeader(key, value string) {
	ctx.Writer.Header().Add(key, value)
}

// ContentType set the response content type
func (ctx *Context) ContentType(ctype string) {
	ctx.SetHeader("Content-Type", ctype)
}

// Redirect replies to the request with a redirect to url, which may be a path relative to the request path.
func (ctx *Context) Redirect(url string, code int) {
	http.Redirect(ctx.Writer, ctx.Request, url, code)
}

// SetCookie adds a Set-Cookie header to the response headers.
func (ctx *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(ctx.Writer, cookie)
}

// RemoveCookie delete a cookie by name
func (ctx *Context) RemoveCookie(name string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now(),
		MaxAge:   -1,
	})
}

// WriteHeader sends an HTTP response header with the provided status code.
func (ctx *Context) WriteHeader(statusCode int) {
	ctx.Writer.WriteHeader(statusCode)
}

func (ctx *Context) Status(statusCode int) {
	ctx.WriteHeader(statusCode)
}

// OK sends an HTTP response header with the 200 OK status code.
func (ctx *Context) OK() {
	ctx.Status(http.StatusOK)
}

// Created sends an HTTP response header with the 201 Created status code.
func (ctx *Context) Created() {
	ctx.Status(http.StatusCreated)
}

// NoContent sends an HTTP response header with the 204 No Content status code.
func (ctx *Context) NoContent() {
	ctx.Status(http.StatusNoContent)
}

// Error replies to the request with the specified plain text error message and HTTP code.
func (ctx *Context) Error(error string, code int) {
	http.Error(ctx.Writer, error, code)
}

// BadRequest replies to the request with an HTTP 400 bad request error.
func (ctx *Context) BadRequest() {
	ctx.Error("400 Bad Request", http.StatusBadRequest)
}

// NotFound replies to the request with an HTTP 404 not found error.
func (ctx *Context) NotFound() {
	http.NotFound(ctx.Writer, ctx.Request)
}

// UnsupportedMediaType replies to the request with an HTTP 415 Unsupported Media Type error.
func (ctx *Context) UnsupportedMediaType() {
	ctx.Error("415 Unsupported Media Type", http.StatusUnsupportedMediaType)
}

// InternalServerError replies to the request with an HTTP 500 Internal Server Error error.
func (ctx *Context) InternalServerError() {
	ctx.Error("500 Internal Server Error", http.StatusInternalServerError)
}
