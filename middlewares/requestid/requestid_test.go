package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chain "github.com/nidorx/chain-xml"
)

func TestMiddleware(t *testing.T) {
	router := chain.New()
	router.Use(New())

	var seen string
	router.GET("/", func(ctx *chain.Context) error {
		seen = Get(ctx)
		return nil
	})

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"generated", "", false},
		{"reused", "trace-1234", true},
		{"invalid characters", "with space", false},
		{"too long", strings.Repeat("a", maxLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderName, tt.incoming)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			id := w.Header().Get(HeaderName)
			assert.Equal(t, seen, id)
			if tt.reused {
				assert.Equal(t, tt.incoming, id)
			} else {
				_, err := ksuid.Parse(id)
				require.NoError(t, err)
			}
		})
	}
}

func TestMiddleware_CustomHeader(t *testing.T) {
	router := chain.New()
	router.Use(&Middleware{Header: "X-Correlation-Id"})
	router.GET("/", func(ctx *chain.Context) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get("X-Correlation-Id"))
	assert.Empty(t, w.Header().Get(HeaderName))
}

func TestGet_WithoutMiddleware(t *testing.T) {
	router := chain.New()
	var seen = "unset"
	router.GET("/", func(ctx *chain.Context) error {
		seen = Get(ctx)
		return nil
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, seen)
}
