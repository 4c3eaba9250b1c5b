package openapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	chain "github.com/nidorx/chain-xml"
)

func get(router *chain.Router, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestExtension_Document(t *testing.T) {
	router := pingRouter()

	var received map[string]string
	ext := AddExtension(router, Config{Title: "Ping API", NSMap: map[string]string{"urn:ping": "p"}},
		func(router *chain.Router, doc *openapi3.T, nsMap map[string]string) (bool, error) {
			received = nsMap
			return false, nil
		})

	doc, err := ext.Document()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"urn:ping": "p"}, received)

	ping := doc.Components.Schemas["Ping"].Value
	assert.Equal(t, &openapi3.XML{Name: "ping", Namespace: "urn:ping", Prefix: "p"}, ping.XML)
	assert.Equal(t, &openapi3.XML{Name: "message"}, ping.Properties["Message"].Value.XML)

	pong := doc.Components.Schemas["Pong"].Value
	assert.Equal(t, &openapi3.XML{Name: "pong", Namespace: "urn:pong"}, pong.XML)
	assert.Equal(t, &openapi3.XML{Name: "tags", Wrapped: true}, pong.Properties["Tags"].Value.XML)
	assert.Equal(t, &openapi3.XML{Name: "tag"}, pong.Properties["Tags"].Value.Items.Value.XML)

	for _, path := range []string{DefaultJSONPath, DefaultYAMLPath} {
		assert.Nil(t, doc.Paths.Value(path), path)
	}

	cached, err := ext.Document()
	require.NoError(t, err)
	assert.Same(t, doc, cached)

	ext.Reset()
	regenerated, err := ext.Document()
	require.NoError(t, err)
	assert.NotSame(t, doc, regenerated)

	predefined := &openapi3.T{OpenAPI: "3.0.0"}
	ext.SetDocument(predefined)
	current, err := ext.Document()
	require.NoError(t, err)
	assert.Same(t, predefined, current)
}

func TestExtension_RegisteredModifier(t *testing.T) {
	RegisterSchemaModifier(func(router *chain.Router, doc *openapi3.T, nsMap map[string]string) (bool, error) {
		doc.Extensions = map[string]any{"x-registered": true}
		return true, nil
	})
	t.Cleanup(func() {
		modifiersMutex.Lock()
		modifiers = nil
		modifiersMutex.Unlock()
	})

	doc, err := AddExtension(chain.New(), Config{}).Document()
	require.NoError(t, err)
	assert.Equal(t, true, doc.Extensions["x-registered"])
}

func TestExtension_ModifierError(t *testing.T) {
	router := chain.New()
	ext := AddExtension(router, Config{}, func(*chain.Router, *openapi3.T, map[string]string) (bool, error) {
		return false, errors.New("broken")
	})

	_, err := ext.Document()
	assert.ErrorContains(t, err, "broken")

	w := get(router, DefaultJSONPath)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExtension_Endpoints(t *testing.T) {
	router := pingRouter()
	AddExtension(router, Config{Title: "Ping API", Version: "2.0.0"})

	w := get(router, DefaultJSONPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("ETag"))

	var document map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &document))
	assert.Equal(t, "3.0.3", document["openapi"])
	assert.Equal(t, "Ping API", document["info"].(map[string]any)["title"])

	schemas := document["components"].(map[string]any)["schemas"].(map[string]any)
	xmlObject := schemas["Ping"].(map[string]any)["xml"].(map[string]any)
	assert.Equal(t, "ping", xmlObject["name"])
	assert.Equal(t, "urn:ping", xmlObject["namespace"])

	w = get(router, DefaultYAMLPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3\n")

	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &fromYAML))
	assert.Equal(t, "2.0.0", fromYAML["info"].(map[string]any)["version"])
	assert.Contains(t, fromYAML["paths"], "/ping")
	responses := fromYAML["paths"].(map[string]any)["/ping"].(map[string]any)["post"].(map[string]any)["responses"].(map[string]any)
	assert.Contains(t, responses, "200")
}

func TestExtension_DisabledEndpoints(t *testing.T) {
	router := chain.New()
	AddExtension(router, Config{JSONPath: "/docs/openapi.json", YAMLPath: "-"})

	assert.Equal(t, http.StatusOK, get(router, "/docs/openapi.json").Code)
	assert.Equal(t, http.StatusNotFound, get(router, DefaultYAMLPath).Code)
	assert.Len(t, router.Routes(), 1)
}
