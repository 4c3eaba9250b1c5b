package openapi

import (
	"encoding/xml"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/nidorx/chain-xml/xmlbody"
)

const (
	componentsPrefix = "#/components/schemas/"

	// GoTypeExtension identifies the Go type a component schema was generated from
	GoTypeExtension = "x-go-type"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	xmlNameType = reflect.TypeOf(xml.Name{})

	invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// modelField a struct field documented as a property of the model schema
type modelField struct {
	reflect.StructField
	Key      string
	Required bool
}

// modelFields lists the documented fields of a struct, flattening embedded structs like encoding/xml does
func modelFields(t reflect.Type) []modelField {
	t = deref(t)
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []modelField
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := xmlbody.ParseTag(field)

		if field.Anonymous && tag.Name == "" && !tag.Skip {
			if embedded := deref(field.Type); embedded.Kind() == reflect.Struct {
				fields = append(fields, modelFields(embedded)...)
				continue
			}
		}

		if !field.IsExported() || field.Type == xmlNameType || !(tag.IsElement() || tag.Attr) {
			continue
		}

		fields = append(fields, modelField{
			StructField: field,
			Key:         propertyName(field),
			Required:    hasValidation(field, "required"),
		})
	}
	return fields
}

// propertyName the json name of the field, the Go name when it has none
func propertyName(field reflect.StructField) string {
	if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return field.Name
}

func hasValidation(field reflect.StructField, rule string) bool {
	for _, r := range strings.Split(field.Tag.Get("validate"), ",") {
		if r == rule {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// generator builds schemas from Go types. Named structs become components.
type generator struct {
	schemas openapi3.Schemas
	names   map[reflect.Type]string
}

func newGenerator(schemas openapi3.Schemas) *generator {
	return &generator{schemas: schemas, names: map[reflect.Type]string{}}
}

func (g *generator) schemaRef(t reflect.Type) *openapi3.SchemaRef {
	t = deref(t)
	if t == timeType {
		return openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
	}

	var schema *openapi3.Schema
	switch t.Kind() {
	case reflect.Bool:
		schema = openapi3.NewBoolSchema()
	case reflect.Int32:
		schema = openapi3.NewInt32Schema()
	case reflect.Int64:
		schema = openapi3.NewInt64Schema()
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		schema = openapi3.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		schema = openapi3.NewFloat64Schema()
	case reflect.String:
		schema = openapi3.NewStringSchema()
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			schema = openapi3.NewBytesSchema()
		} else {
			schema = openapi3.NewArraySchema()
			schema.Items = g.schemaRef(t.Elem())
		}
	case reflect.Map:
		schema = openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: g.schemaRef(t.Elem())}
	case reflect.Struct:
		if t.Name() != "" {
			return g.component(t)
		}
		schema = openapi3.NewObjectSchema()
		g.fillStruct(t, schema)
	default:
		schema = openapi3.NewSchema()
	}
	return openapi3.NewSchemaRef("", schema)
}

// component returns a reference to the component of t, generating it on first use
func (g *generator) component(t reflect.Type) *openapi3.SchemaRef {
	name, known := g.names[t]
	if !known {
		name = g.componentName(t)
		g.names[t] = name

		schema := openapi3.NewObjectSchema()
		schema.Title = name
		schema.Extensions = map[string]any{GoTypeExtension: goTypeName(t)}
		// registered before the fields, recursive types reference it
		g.schemas[name] = openapi3.NewSchemaRef("", schema)
		g.fillStruct(t, schema)
	}
	return openapi3.NewSchemaRef(componentsPrefix+name, g.schemas[name].Value)
}

func (g *generator) componentName(t reflect.Type) string {
	name := invalidNameChars.ReplaceAllString(t.Name(), "_")
	if !g.taken(name) {
		return name
	}

	qualified := invalidNameChars.ReplaceAllString(path.Base(t.PkgPath()), "_") + "." + name
	candidate := qualified
	for i := 2; ; i++ {
		if !g.taken(candidate) {
			return candidate
		}
		candidate = qualified + strconv.Itoa(i)
	}
}

// taken reports whether the component name is used, or reserved for the validation error schemas
func (g *generator) taken(name string) bool {
	if name == validationErrorName || name == httpValidationErrorName {
		return true
	}
	_, taken := g.schemas[name]
	return taken
}

// goTypeName the import path qualified name of t, so equally named packages do not collide
func goTypeName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func (g *generator) fillStruct(t reflect.Type, schema *openapi3.Schema) {
	for _, field := range modelFields(t) {
		schema.Properties[field.Key] = g.schemaRef(field.Type)
		if field.Required {
			schema.Required = append(schema.Required, field.Key)
		}
	}
}

// componentOf finds the component generated from t
func componentOf(schemas openapi3.Schemas, t reflect.Type) (string, *openapi3.Schema) {
	goType := goTypeName(deref(t))
	for name, ref := range schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		if v, ok := ref.Value.Extensions[GoTypeExtension]; ok && v == goType {
			return name, ref.Value
		}
	}
	return "", nil
}

const (
	validationErrorName     = "ValidationError"
	httpValidationErrorName = "HTTPValidationError"
)

// addValidationSchemas documents the body of chain.ValidationError responses
func addValidationSchemas(schemas openapi3.Schemas) *openapi3.SchemaRef {
	loc := openapi3.NewArraySchema()
	loc.Title = "Location"
	loc.Items = openapi3.NewSchemaRef("", &openapi3.Schema{AnyOf: openapi3.SchemaRefs{
		openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
		openapi3.NewSchemaRef("", openapi3.NewIntegerSchema()),
	}})

	msg := openapi3.NewStringSchema()
	msg.Title = "Message"
	typ := openapi3.NewStringSchema()
	typ.Title = "Error Type"

	validationError := openapi3.NewObjectSchema()
	validationError.Title = validationErrorName
	validationError.Properties["loc"] = openapi3.NewSchemaRef("", loc)
	validationError.Properties["msg"] = openapi3.NewSchemaRef("", msg)
	validationError.Properties["type"] = openapi3.NewSchemaRef("", typ)
	validationError.Required = []string{"loc", "msg", "type"}
	schemas[validationErrorName] = openapi3.NewSchemaRef("", validationError)

	detail := openapi3.NewArraySchema()
	detail.Title = "Detail"
	detail.Items = openapi3.NewSchemaRef(componentsPrefix+validationErrorName, validationError)

	httpValidationError := openapi3.NewObjectSchema()
	httpValidationError.Title = httpValidationErrorName
	httpValidationError.Properties["detail"] = openapi3.NewSchemaRef("", detail)
	schemas[httpValidationErrorName] = openapi3.NewSchemaRef("", httpValidationError)

	return openapi3.NewSchemaRef(componentsPrefix+httpValidationErrorName, httpValidationError)
}
