package openapi

import (
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/xmlbody"
	"github.com/pkg/errors"
)

// AddXMLSchema attaches the XML element metadata of the route models (and the models they nest) to their
// component schemas.
//
// Returns false when the document has no component schemas. Otherwise reports whether at least one model and one
// field were annotated.
func AddXMLSchema(router *chain.Router, doc *openapi3.T, nsMap map[string]string) (bool, error) {
	if doc.Components == nil || doc.Components.Schemas == nil {
		return false, nil
	}

	models, fields := 0, 0
	for _, model := range routeModels(router, doc) {
		_, schema := componentOf(doc.Components.Schemas, model)
		addModelSchema(model, schema, nsMap)
		models++

		for _, field := range modelFields(model) {
			if err := addFieldSchema(model, field, schema, nsMap); err != nil {
				return false, err
			}
			fields++
		}
	}
	return models > 0 && fields > 0, nil
}

// routeModels the struct types used as bodies and responses of the documented routes, including the structs they
// nest, that have a component in the document
func routeModels(router *chain.Router, doc *openapi3.T) []reflect.Type {
	var models []reflect.Type
	seen := map[reflect.Type]bool{}

	var visit func(t reflect.Type)
	visit = func(t reflect.Type) {
		if t == nil {
			return
		}
		t = deref(t)
		switch t.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			visit(t.Elem())
			return
		case reflect.Struct:
		default:
			return
		}
		if seen[t] {
			return
		}
		seen[t] = true

		if _, schema := componentOf(doc.Components.Schemas, t); schema != nil {
			models = append(models, t)
		}
		for _, field := range modelFields(t) {
			visit(field.Type)
		}
	}

	for _, route := range router.Routes() {
		if route.ExcludeFromSchema {
			continue
		}
		if route.Body != nil {
			visit(route.Body.Type)
		}
		visit(route.ResponseModel)
	}
	return models
}

// addModelSchema names the element of the model
func addModelSchema(model reflect.Type, schema *openapi3.Schema, nsMap map[string]string) {
	meta := xmlbody.ModelMeta(model)
	schema.XML = &openapi3.XML{
		Name:      meta.Name,
		Namespace: meta.Namespace,
		Prefix:    prefixOf(nsMap, meta.Namespace),
	}
}

// addFieldSchema documents how the field is written: name, namespace, attribute and wrapping of lists
func addFieldSchema(model reflect.Type, field modelField, schema *openapi3.Schema, nsMap map[string]string) error {
	if schema.Properties == nil {
		return nil
	}
	prop := schema.Properties[field.Key]
	if prop == nil || prop.Value == nil {
		return nil
	}

	tag := xmlbody.ParseTag(field.StructField)

	name := tag.Name
	if name == "" && field.Name != field.Key {
		name = field.Name
	}

	var fieldName, itemName string
	if tag.Wrapper == "" {
		fieldName = name
	} else {
		fieldName = tag.WrapperName()
		itemName = name
	}

	isArray := prop.Value.Type != nil && prop.Value.Type.Is(openapi3.TypeArray)
	if tag.Wrapper != "" && !isArray {
		return errors.Errorf("invalid wrapping type on %s.%s: %s", deref(model).Name(), field.Name, typeOf(prop.Value))
	}

	switchRefToAllOf(prop, &openapi3.XML{
		Name:      fieldName,
		Namespace: tag.Namespace,
		Prefix:    prefixOf(nsMap, tag.Namespace),
		Attribute: tag.Attr,
		Wrapped:   tag.Wrapper != "",
	})

	if isArray {
		if prop.Value.Items == nil {
			return errors.Errorf("missing property items on %s.%s", schema.Title, field.Name)
		}
		switchRefToAllOf(prop.Value.Items, &openapi3.XML{Name: itemName})
	}
	return nil
}

// switchRefToAllOf attaches a non-empty XML object to the property. A reference is moved into allOf, the only way
// to describe a referenced schema together with sibling keywords.
func switchRefToAllOf(prop *openapi3.SchemaRef, x *openapi3.XML) {
	if isXMLEmpty(x) {
		return
	}
	if prop.Ref == "" {
		if prop.Value == nil {
			prop.Value = openapi3.NewSchema()
		}
		prop.Value.XML = x
		return
	}

	prop.Value = &openapi3.Schema{
		AllOf: openapi3.SchemaRefs{openapi3.NewSchemaRef(prop.Ref, prop.Value)},
		XML:   x,
	}
	prop.Ref = ""
}

func isXMLEmpty(x *openapi3.XML) bool {
	return x == nil || (x.Name == "" && x.Namespace == "" && x.Prefix == "" && !x.Attribute && !x.Wrapped)
}

func prefixOf(nsMap map[string]string, namespace string) string {
	if namespace == "" {
		return ""
	}
	return nsMap[namespace]
}

func typeOf(schema *openapi3.Schema) string {
	if schema.Type == nil || len(*schema.Type) == 0 {
		return "any"
	}
	return (*schema.Type)[0]
}
