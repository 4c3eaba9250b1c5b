package chain

import (
	"io"
	"net/http"
	"net/url"
)

// BodyBytes get body as array of bytes. The body is read once and cached for the request.
func (ctx *Context) BodyBytes() (body []byte, err error) {
	if cb, exist := ctx.Get(BodyBytesKey); exist && cb != nil {
		if cbb, ok := cb.([]byte); ok {
			return cbb, nil
		}
	}

	if ctx.Request.Body == nil || ctx.Request.Body == http.NoBody {
		body = []byte{}
	} else if body, err = io.ReadAll(ctx.Request.Body); err != nil {
		return nil, err
	}
	ctx.Set(BodyBytesKey, body)
	return
}

// QueryParam the first value of the query parameter, else the first default value
func (ctx *Context) QueryParam(name string, defaultValue ...string) string {
	if val := ctx.Request.URL.Query().Get(name); val != "" {
		return val
	}
	for _, v := range defaultValue {
		return v
	}
	return ""
}

// Host host as string
func (ctx *Context) Host() string {
	return ctx.Request.Host
}

// Ip remote address as string
func (ctx *Context) Ip() string {
	return ctx.Request.RemoteAddr
}

// Method specifies the HTTP method (GET, POST, PUT, etc.).
func (ctx *Context) Method() string {
	return ctx.Request.Method
}

// UserAgent returns the client's User-Agent, if sent in the request.
func (ctx *Context) UserAgent() string {
	return ctx.Request.UserAgent()
}

// URL request url
func (ctx *Context) URL() *url.URL {
	return ctx.Request.URL
}

// GetContentType returns the lowercase media type of the request Content-Type header, without parameters.
func (ctx *Context) GetContentType() string {
	return MediaType(ctx.Request.Header.Get("Content-Type"))
}

// GetHeader gets the first value of the request header associated with the given key.
func (ctx *Context) GetHeader(key string) string {
	return ctx.Request.Header.Get(key)
}
