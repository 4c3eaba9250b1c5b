package openapi

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/xmlbody"
)

var nonWordChars = regexp.MustCompile(`\W`)

// documentedMethods the methods a PathItem has an operation for
var documentedMethods = map[string]bool{
	http.MethodConnect: true,
	http.MethodDelete:  true,
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodPatch:   true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodTrace:   true,
}

// Generate builds the document of the router routes, without XML metadata
func Generate(router *chain.Router, config Config) *openapi3.T {
	config = config.withDefaults()

	doc := &openapi3.T{
		OpenAPI: config.OpenAPIVersion,
		Info: &openapi3.Info{
			Title:          config.Title,
			Version:        config.Version,
			Description:    config.Description,
			TermsOfService: config.TermsOfService,
			Contact:        config.Contact,
			License:        config.License,
		},
		Servers:    config.Servers,
		Tags:       config.Tags,
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
	}

	g := newGenerator(doc.Components.Schemas)
	var validationRef *openapi3.SchemaRef

	for _, route := range router.Routes() {
		if route.ExcludeFromSchema {
			continue
		}
		if !documentedMethods[route.Method] {
			logger.Warn().Str("method", route.Method).Str("path", route.Info.Path()).
				Msg("route method has no OpenAPI operation, skipping")
			continue
		}

		operation := &openapi3.Operation{
			Summary:     route.Summary,
			Description: route.Description,
			OperationID: operationID(route),
			Tags:        route.Tags,
			Deprecated:  route.Deprecated,
		}

		params := route.Info.Params()
		for _, name := range params {
			operation.AddParameter(openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()))
		}

		hasBody := route.Body != nil && route.Body.Type != nil
		if hasBody {
			operation.RequestBody = &openapi3.RequestBodyRef{Value: g.requestBody(route)}
		}

		operation.Responses = g.responses(route)
		if hasBody || len(params) > 0 {
			if validationRef == nil {
				validationRef = addValidationSchemas(doc.Components.Schemas)
			}
			content := openapi3.NewContentWithSchemaRef(validationRef, []string{chain.JSONRenderer.ContentType()})
			operation.Responses.Set("422", &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Validation Error").WithContent(content),
			})
		}

		path := route.Info.OpenAPIPath()
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(route.Method, operation)
	}

	if len(doc.Components.Schemas) == 0 {
		doc.Components = nil
	}
	return doc
}

// operationID the route OperationID, or one derived from path and method
func operationID(route *chain.Route) string {
	if route.OperationID != "" {
		return route.OperationID
	}
	name := strings.Trim(nonWordChars.ReplaceAllString(route.Info.OpenAPIPath(), "_"), "_")
	if name == "" {
		name = "root"
	}
	return name + "_" + strings.ToLower(route.Method)
}

func (g *generator) requestBody(route *chain.Route) *openapi3.RequestBody {
	spec := route.Body

	schema := g.schemaRef(spec.Type)
	if schema.Ref == "" {
		applyConstraints(schema.Value, spec)
	}

	if spec.Embed {
		wrapper := openapi3.NewObjectSchema()
		wrapper.Title = "Body_" + operationID(route)
		wrapper.XML = &openapi3.XML{Name: spec.EmbedName()}
		key := xmlbody.ModelMeta(spec.Type).Name
		wrapper.Properties[key] = schema
		if spec.Required {
			wrapper.Required = []string{key}
		}
		schema = openapi3.NewSchemaRef("", wrapper)
	}

	mediaType := spec.MediaType
	if mediaType == "" {
		mediaType = chain.JSONRenderer.ContentType()
	}
	content := openapi3.NewContentWithSchemaRef(schema, []string{mediaType})
	if spec.Example != nil {
		content[mediaType].Example = spec.Example
	}
	if len(spec.Examples) > 0 {
		content[mediaType].Examples = openapi3.Examples{}
		for name, example := range spec.Examples {
			content[mediaType].Examples[name] = &openapi3.ExampleRef{Value: openapi3.NewExample(example)}
		}
	}

	body := openapi3.NewRequestBody().WithRequired(spec.Required).WithContent(content)
	if spec.Description != "" {
		body.WithDescription(spec.Description)
	}
	return body
}

// applyConstraints documents the body constraints on an inline schema
func applyConstraints(schema *openapi3.Schema, spec *chain.BodySpec) {
	if spec.Title != "" {
		schema.Title = spec.Title
	}
	if spec.Description != "" {
		schema.Description = spec.Description
	}

	switch {
	case spec.Gt != nil:
		schema.WithMin(*spec.Gt).WithExclusiveMin(true)
	case spec.Ge != nil:
		schema.WithMin(*spec.Ge)
	}
	switch {
	case spec.Lt != nil:
		schema.WithMax(*spec.Lt).WithExclusiveMax(true)
	case spec.Le != nil:
		schema.WithMax(*spec.Le)
	}

	isArray := schema.Type != nil && schema.Type.Is(openapi3.TypeArray)
	if spec.MinLength != nil {
		if isArray {
			schema.WithMinItems(int64(*spec.MinLength))
		} else {
			schema.WithMinLength(int64(*spec.MinLength))
		}
	}
	if spec.MaxLength != nil {
		if isArray {
			schema.WithMaxItems(int64(*spec.MaxLength))
		} else {
			schema.WithMaxLength(int64(*spec.MaxLength))
		}
	}
	if spec.Pattern != "" {
		schema.WithPattern(spec.Pattern)
	}

	for key, value := range spec.Extra {
		if !strings.HasPrefix(key, "x-") {
			key = "x-" + key
		}
		if schema.Extensions == nil {
			schema.Extensions = map[string]any{}
		}
		schema.Extensions[key] = value
	}
}

func (g *generator) responses(route *chain.Route) *openapi3.Responses {
	status := route.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	description := http.StatusText(status)
	if status >= 200 && status < 300 {
		description = "Successful Response"
	}
	response := openapi3.NewResponse().WithDescription(description)

	if chain.IsBodyAllowedForStatus(status) {
		var schema *openapi3.SchemaRef
		if route.ResponseModel != nil {
			schema = g.schemaRef(route.ResponseModel)
		} else {
			schema = openapi3.NewSchemaRef("", openapi3.NewSchema())
		}
		response.WithContent(openapi3.NewContentWithSchemaRef(schema, []string{route.Renderer().ContentType()}))
	}

	return openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{Value: response}))
}
