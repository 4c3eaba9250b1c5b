package xmlbody

import (
	"encoding/xml"
	"reflect"
	"strings"
)

var xmlNameType = reflect.TypeOf(xml.Name{})

// Meta names the XML element of a model
type Meta struct {
	Name      string
	Namespace string
}

// MetaProvider is implemented by models naming their element without an XMLName field.
//
//	type Ping struct {
//		Message string `xml:"message"`
//	}
//
//	func (Ping) XMLMeta() xmlbody.Meta {
//		return xmlbody.Meta{Name: "ping", Namespace: "urn:ping"}
//	}
type MetaProvider interface {
	XMLMeta() Meta
}

// ModelMeta resolves the element of a model: the XMLName tag, then MetaProvider, then the type name.
func ModelMeta(t reflect.Type) Meta {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var meta Meta
	if field, ok := xmlNameField(t); ok {
		tag := ParseTag(field)
		meta.Name, meta.Namespace = tag.Name, tag.Namespace
	}

	if provider, ok := reflect.New(t).Interface().(MetaProvider); ok {
		provided := provider.XMLMeta()
		if meta.Name == "" {
			meta.Name = provided.Name
		}
		if meta.Namespace == "" {
			meta.Namespace = provided.Namespace
		}
	}

	if meta.Name == "" {
		meta.Name = t.Name()
	}
	return meta
}

func xmlNameField(t reflect.Type) (reflect.StructField, bool) {
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	field, ok := t.FieldByName("XMLName")
	if !ok || field.Type != xmlNameType {
		return reflect.StructField{}, false
	}
	return field, true
}

// rootElement the start element used when serializing a model that names itself through MetaProvider
func rootElement(t reflect.Type) (*xml.StartElement, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if field, ok := xmlNameField(t); ok && ParseTag(field).Name != "" {
		return nil, false
	}
	if _, ok := reflect.New(t).Interface().(MetaProvider); !ok {
		return nil, false
	}
	meta := ModelMeta(t)
	return &xml.StartElement{Name: xml.Name{Space: meta.Namespace, Local: meta.Name}}, true
}

// FieldTag the parsed `xml` tag of a struct field
type FieldTag struct {
	// Name explicitly given in the tag, empty when derived from the field name
	Name      string
	Namespace string

	// Wrapper parent elements of "parent>child" tags, ex. "Items" for `xml:"Items>item"`
	Wrapper string

	Attr      bool
	CharData  bool
	InnerXML  bool
	Comment   bool
	Any       bool
	OmitEmpty bool

	// Skip fields tagged `xml:"-"`
	Skip bool
}

// IsElement reports whether the field is written as a child element
func (t FieldTag) IsElement() bool {
	return !t.Skip && !t.Attr && !t.CharData && !t.InnerXML && !t.Comment
}

// WrapperName the innermost parent element of the field
func (t FieldTag) WrapperName() string {
	if i := strings.LastIndexByte(t.Wrapper, '>'); i >= 0 {
		return t.Wrapper[i+1:]
	}
	return t.Wrapper
}

// ParseTag parses the `xml` tag of a struct field, following encoding/xml rules
func ParseTag(field reflect.StructField) FieldTag {
	var tag FieldTag

	value, ok := field.Tag.Lookup("xml")
	if !ok {
		return tag
	}
	if value == "-" {
		tag.Skip = true
		return tag
	}

	parts := strings.Split(value, ",")
	name := parts[0]
	if i := strings.IndexByte(name, ' '); i >= 0 {
		tag.Namespace, name = name[:i], name[i+1:]
	}
	if i := strings.LastIndexByte(name, '>'); i >= 0 {
		tag.Wrapper, name = name[:i], name[i+1:]
	}
	tag.Name = name

	for _, option := range parts[1:] {
		switch option {
		case "attr":
			tag.Attr = true
		case "chardata":
			tag.CharData = true
		case "innerxml":
			tag.InnerXML = true
		case "comment":
			tag.Comment = true
		case "any":
			tag.Any = true
		case "omitempty":
			tag.OmitEmpty = true
		}
	}
	return tag
}
