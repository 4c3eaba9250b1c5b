package xmlbody

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"golang.org/x/net/html/charset"
)

// Parser reads XML documents into typed values
type Parser interface {
	Unmarshal(data []byte, v any) error

	// UnmarshalEmbedded reads the first child of the root element, which must be named wrapper
	UnmarshalEmbedded(data []byte, wrapper string, v any) error
}

// Serializer writes typed values as XML documents
type Serializer interface {
	Marshal(v any) ([]byte, error)
}

// XMLParser the encoding/xml Parser. Documents in other charsets than UTF-8 are converted with CharsetReader.
type XMLParser struct {
	Strict        bool
	CharsetReader func(label string, input io.Reader) (io.Reader, error)
}

func NewParser() *XMLParser {
	return &XMLParser{Strict: true, CharsetReader: charset.NewReaderLabel}
}

func (p *XMLParser) decoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = p.Strict
	d.CharsetReader = p.CharsetReader
	return d
}

func (p *XMLParser) Unmarshal(data []byte, v any) error {
	return p.decoder(data).Decode(v)
}

func (p *XMLParser) UnmarshalEmbedded(data []byte, wrapper string, v any) error {
	d := p.decoder(data)

	root, err := nextStartElement(d)
	if err != nil {
		return err
	}
	if wrapper != "" && root.Name.Local != wrapper {
		return fmt.Errorf("expected element <%s> but have <%s>", wrapper, root.Name.Local)
	}

	child, err := nextStartElement(d)
	if err != nil {
		return err
	}
	return d.DecodeElement(v, &child)
}

func nextStartElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		token, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, fmt.Errorf("unexpected end element </%s>", t.Name.Local)
		}
	}
}

// XMLSerializer the encoding/xml Serializer
type XMLSerializer struct {
	// Indent of nested elements, empty for a compact document
	Indent string

	// Header writes the XML declaration before the root element
	Header bool
}

func NewSerializer() *XMLSerializer {
	return &XMLSerializer{Header: true}
}

// Marshal encodes v. The root element is named after the model Meta when the type has no XMLName tag.
// A nil value produces an empty document.
func (s *XMLSerializer) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil, nil
	}

	var buf bytes.Buffer
	if s.Header {
		buf.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buf)
	if s.Indent != "" {
		enc.Indent("", s.Indent)
	}

	var err error
	if start, ok := rootElement(rv.Type()); ok {
		err = enc.EncodeElement(v, *start)
	} else {
		err = enc.Encode(v)
	}
	if err != nil {
		return nil, err
	}
	if err = enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
