// Package openapi builds the OpenAPI document of a chain router and annotates its schemas with XML metadata.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"
)

var logger = log.With().Str("package", "chain.openapi").Logger()

const (
	DefaultOpenAPIVersion = "3.0.3"
	DefaultJSONPath       = "/openapi.json"
	DefaultYAMLPath       = "/openapi.yaml"
)

// Config of the generated document
type Config struct {
	Title          string
	Version        string
	Description    string
	TermsOfService string
	OpenAPIVersion string
	Contact        *openapi3.Contact
	License        *openapi3.License
	Servers        openapi3.Servers
	Tags           openapi3.Tags

	// NSMap maps XML namespaces to the prefixes documented for them
	NSMap map[string]string

	// JSONPath and YAMLPath where the Extension serves the document. "-" disables the endpoint.
	JSONPath string
	YAMLPath string
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "API"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.OpenAPIVersion == "" {
		c.OpenAPIVersion = DefaultOpenAPIVersion
	}
	if c.JSONPath == "" {
		c.JSONPath = DefaultJSONPath
	}
	if c.YAMLPath == "" {
		c.YAMLPath = DefaultYAMLPath
	}
	if c.NSMap == nil {
		c.NSMap = map[string]string{}
	}
	return c
}
