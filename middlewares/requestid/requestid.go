// Package requestid identifies every request with a unique id, sent back in the X-Request-Id header.
package requestid

import (
	chain "github.com/nidorx/chain-xml"
)

const HeaderName = "X-Request-Id"

// id of the request on chain.Context
var contextKey = "chain.middlewares.requestid"

// maxLength of an incoming id that is reused
const maxLength = 200

// Middleware reuses the incoming request id or generates a new one (ksuid)
type Middleware struct {
	// Header defaults to X-Request-Id
	Header string
}

func New() *Middleware {
	return &Middleware{Header: HeaderName}
}

func (m *Middleware) Handle(ctx *chain.Context, next func() error) error {
	header := m.Header
	if header == "" {
		header = HeaderName
	}

	id := ctx.GetHeader(header)
	if !isValid(id) {
		id = ctx.NewUID()
	}
	ctx.Set(contextKey, id)
	ctx.SetHeader(header, id)
	return next()
}

// Get returns the id of the request, empty when the middleware is not registered
func Get(ctx *chain.Context) string {
	if v, exists := ctx.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func isValid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
