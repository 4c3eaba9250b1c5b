// Package xmlbody reads XML request bodies into typed values and renders endpoint results as XML.
package xmlbody

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/nonjson"
	"github.com/rs/zerolog/log"
)

var logger = log.With().Str("package", "chain.xmlbody").Logger()

const (
	MediaTypeApplication = "application/xml"
	MediaTypeText        = "text/xml"
)

// Decoder the nonjson.Decoder of XML bodies
type Decoder struct {
	// ParserFactory creates the shared Parser, defaults to NewParser
	ParserFactory func() Parser

	once   sync.Once
	parser Parser
}

// DefaultDecoder registered in the nonjson default registry
var DefaultDecoder = &Decoder{}

// BindingXML binds XML bodies with the DefaultDecoder parser, registered for the XML content types
var BindingXML chain.Binding = xmlBinding{}

func init() {
	if err := nonjson.Register(DefaultDecoder); err != nil {
		panic(err)
	}
	if err := chain.RegisterBinding(BindingXML, DefaultDecoder.SupportedContentTypes()...); err != nil {
		panic(err)
	}
}

// Parser returns the parser shared by every request, created on first use
func (d *Decoder) Parser() Parser {
	d.once.Do(func() {
		factory := d.ParserFactory
		if factory == nil {
			factory = func() Parser { return NewParser() }
		}
		d.parser = factory()
	})
	return d.parser
}

func (d *Decoder) SupportedContentTypes() []string {
	return []string{MediaTypeApplication, MediaTypeText, "*+xml"}
}

// Decode parses body into target.
//
// Targets the parser cannot bind are not handled. A parse failure is a nonjson.BodyDecodeError when the request
// declares an XML content type, otherwise the body is left to the next decoder.
func (d *Decoder) Decode(req *http.Request, spec *chain.BodySpec, body []byte, target any) (bool, error) {
	if !Bindable(target) {
		decodeTotal.WithLabelValues("skipped").Inc()
		return false, nil
	}

	var err error
	if spec != nil && spec.Embed {
		err = d.Parser().UnmarshalEmbedded(body, spec.EmbedName(), target)
	} else {
		err = d.Parser().Unmarshal(body, target)
	}
	if err == nil {
		decodeTotal.WithLabelValues("ok").Inc()
		return true, nil
	}

	if IsXMLContentType(req.Header.Get("Content-Type")) {
		decodeTotal.WithLabelValues("error").Inc()
		logger.Debug().Err(err).Str("target", reflect.TypeOf(target).String()).Msg("invalid xml body")
		return false, nonjson.NewBodyDecodeError(err.Error(), err)
	}

	decodeTotal.WithLabelValues("skipped").Inc()
	return false, nil
}

// Bindable reports whether target is a pointer to a value encoding/xml can decode into
func Bindable(target any) bool {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	switch derefKind(rv.Type().Elem()) {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer,
		reflect.Complex64, reflect.Complex128:
		return false
	}
	return true
}

func derefKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

// IsXMLContentType reports whether the content type is "*/xml" or "*+xml"
func IsXMLContentType(contentType string) bool {
	mediaType := chain.MediaType(contentType)
	return strings.HasSuffix(mediaType, "/xml") || strings.HasSuffix(mediaType, "+xml")
}

type xmlBinding struct{}

func (xmlBinding) Bind(ctx *chain.Context, obj any) error {
	body, err := ctx.BodyBytes()
	if err != nil {
		return chain.NewHTTPError(http.StatusBadRequest, nonjson.ErrParsingBody)
	}
	if err = DefaultDecoder.Parser().Unmarshal(body, obj); err != nil {
		return nonjson.NewBodyDecodeError(err.Error(), err)
	}
	return nil
}
