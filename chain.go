package chain

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var logger = log.With().Str("package", "chain").Logger()

// New creates a Router. Routes are matched by chi and each route handler is instrumented with otelhttp.
func New() *Router {
	router := &Router{mux: chi.NewRouter()}
	router.contextPool.New = func() any {
		return &Context{}
	}
	return router
}
