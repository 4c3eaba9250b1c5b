package openapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	chain "github.com/nidorx/chain-xml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SchemaModifier changes the generated document, reporting whether it modified anything
type SchemaModifier func(router *chain.Router, doc *openapi3.T, nsMap map[string]string) (bool, error)

var (
	modifiersMutex sync.RWMutex
	modifiers      []SchemaModifier
)

// RegisterSchemaModifier adds a modifier applied by every Extension, after the XML schema
func RegisterSchemaModifier(modifier SchemaModifier) {
	modifiersMutex.Lock()
	defer modifiersMutex.Unlock()
	modifiers = append(modifiers, modifier)
}

func registeredModifiers() []SchemaModifier {
	modifiersMutex.RLock()
	defer modifiersMutex.RUnlock()
	return append([]SchemaModifier(nil), modifiers...)
}

// Extension serves the XML aware document of a router. The document is built on first use and cached.
type Extension struct {
	router    *chain.Router
	config    Config
	modifiers []SchemaModifier
	mutex     sync.Mutex
	document  *openapi3.T
}

// AddExtension registers the document endpoints (Config.JSONPath and Config.YAMLPath) on the router. The given
// modifiers run after AddXMLSchema and the registered modifiers.
func AddExtension(router *chain.Router, config Config, modifiers ...SchemaModifier) *Extension {
	e := &Extension{router: router, config: config.withDefaults(), modifiers: modifiers}

	if e.config.JSONPath != "-" {
		router.GET(e.config.JSONPath, e.serveJSON, chain.ExcludeFromSchema())
	}
	if e.config.YAMLPath != "-" {
		router.GET(e.config.YAMLPath, e.serveYAML, chain.ExcludeFromSchema())
	}
	return e
}

// Document returns the cached document, generating and patching it on first call
func (e *Extension) Document() (*openapi3.T, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.document != nil {
		return e.document, nil
	}

	doc := Generate(e.router, e.config)

	all := append([]SchemaModifier{AddXMLSchema}, registeredModifiers()...)
	for _, modifier := range append(all, e.modifiers...) {
		if _, err := modifier(e.router, doc, e.config.NSMap); err != nil {
			return nil, errors.Wrap(err, "openapi: unable to modify the document")
		}
	}

	e.document = doc
	return doc, nil
}

// SetDocument predefines the document served, Generate is not called while it is set
func (e *Extension) SetDocument(doc *openapi3.T) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.document = doc
}

// Reset clears the cached document
func (e *Extension) Reset() {
	e.SetDocument(nil)
}

// JSON the document encoded as JSON
func (e *Extension) JSON() ([]byte, error) {
	doc, err := e.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// YAML the document encoded as YAML, keeping the order of the JSON document
func (e *Extension) YAML() ([]byte, error) {
	content, err := e.JSON()
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err = yaml.Unmarshal(content, &node); err != nil {
		return nil, errors.Wrap(err, "openapi: unable to convert the document")
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle removes the JSON flow style and quoting inherited from the parsed document
func blockStyle(node *yaml.Node) {
	node.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, child := range node.Content {
		blockStyle(child)
	}
}

func (e *Extension) serveJSON(ctx *chain.Context) error {
	content, err := e.JSON()
	if err != nil {
		logger.Error().Err(err).Msg("unable to render the openapi document")
		return err
	}
	ctx.SetHeader("Content-Type", "application/json")
	ctx.ServeContent(content, "", chain.UnixEpoch)
	return nil
}

func (e *Extension) serveYAML(ctx *chain.Context) error {
	content, err := e.YAML()
	if err != nil {
		logger.Error().Err(err).Msg("unable to render the openapi document")
		return err
	}
	return ctx.Send(http.StatusOK, "application/yaml", content)
}
