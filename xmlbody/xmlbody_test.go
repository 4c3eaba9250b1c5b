package xmlbody

import (
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/nonjson"
)

type Ping struct {
	XMLName xml.Name `xml:"ping"`
	Message string   `xml:"message"`
}

type Pong struct {
	Message string `xml:"message"`
}

func (Pong) XMLMeta() Meta {
	return Meta{Name: "pong", Namespace: "urn:pong"}
}

type Item struct {
	XMLName xml.Name `xml:"urn:items item"`
	ID      int      `xml:"id,attr"`
}

type Named struct {
	Value string
}

func (*Named) XMLMeta() Meta {
	return Meta{Namespace: "urn:named"}
}

func perform(router *chain.Router, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestParser(t *testing.T) {
	parser := NewParser()

	var ping Ping
	require.NoError(t, parser.Unmarshal([]byte(`<ping><message>hello</message></ping>`), &ping))
	assert.Equal(t, "hello", ping.Message)

	latin1 := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><ping><message>caf\xe9</message></ping>"
	require.NoError(t, parser.Unmarshal([]byte(latin1), &ping))
	assert.Equal(t, "café", ping.Message)

	assert.Error(t, parser.Unmarshal([]byte(`<ping><message>`), &ping))
	assert.Error(t, parser.Unmarshal([]byte(`<other/>`), &ping))
}

func TestParser_UnmarshalEmbedded(t *testing.T) {
	parser := NewParser()

	var ping Ping
	require.NoError(t, parser.UnmarshalEmbedded([]byte(`<body><ping><message>x</message></ping></body>`), "body", &ping))
	assert.Equal(t, "x", ping.Message)

	err := parser.UnmarshalEmbedded([]byte(`<other><ping/></other>`), "body", &ping)
	assert.EqualError(t, err, "expected element <body> but have <other>")

	err = parser.UnmarshalEmbedded([]byte(`<body></body>`), "body", &ping)
	assert.EqualError(t, err, "unexpected end element </body>")
}

func TestSerializer(t *testing.T) {
	compact := &XMLSerializer{}

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"xml name tag", Ping{Message: "hi"}, `<ping><message>hi</message></ping>`},
		{"meta provider", &Pong{Message: "hi"}, `<pong xmlns="urn:pong"><message>hi</message></pong>`},
		{"namespaced tag", Item{ID: 7}, `<item xmlns="urn:items" id="7"></item>`},
		{"pointer receiver meta", Named{Value: "v"}, `<Named xmlns="urn:named"><Value>v</Value></Named>`},
		{"nil", nil, ``},
		{"nil pointer", (*Pong)(nil), ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := compact.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(content))
		})
	}

	content, err := NewSerializer().Marshal(Ping{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, xml.Header+`<ping><message>hi</message></ping>`, string(content))

	content, err = (&XMLSerializer{Indent: "  "}).Marshal(Ping{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "<ping>\n  <message>hi</message>\n</ping>", string(content))

	_, err = compact.Marshal(map[string]string{"a": "b"})
	assert.Error(t, err)
}

func TestModelMeta(t *testing.T) {
	assert.Equal(t, Meta{Name: "ping"}, ModelMeta(reflect.TypeOf(Ping{})))
	assert.Equal(t, Meta{Name: "pong", Namespace: "urn:pong"}, ModelMeta(reflect.TypeOf(&Pong{})))
	assert.Equal(t, Meta{Name: "item", Namespace: "urn:items"}, ModelMeta(reflect.TypeOf(Item{})))
	assert.Equal(t, Meta{Name: "Named", Namespace: "urn:named"}, ModelMeta(reflect.TypeOf(Named{})))
}

func TestParseTag(t *testing.T) {
	type sample struct {
		Plain    string
		Named    string   `xml:"named"`
		Space    string   `xml:"urn:a spaced,omitempty"`
		Attr     string   `xml:"id,attr"`
		Wrapped  []string `xml:"Items>item"`
		Deep     []string `xml:"a>b>c"`
		Text     string   `xml:",chardata"`
		Inner    string   `xml:",innerxml"`
		Skipped  string   `xml:"-"`
		Implicit string   `xml:",omitempty"`
	}
	st := reflect.TypeOf(sample{})
	tag := func(name string) FieldTag {
		field, _ := st.FieldByName(name)
		return ParseTag(field)
	}

	assert.Equal(t, FieldTag{}, tag("Plain"))
	assert.Equal(t, FieldTag{Name: "named"}, tag("Named"))
	assert.Equal(t, FieldTag{Name: "spaced", Namespace: "urn:a", OmitEmpty: true}, tag("Space"))
	assert.True(t, tag("Attr").Attr)
	assert.False(t, tag("Attr").IsElement())
	assert.Equal(t, FieldTag{Name: "item", Wrapper: "Items"}, tag("Wrapped"))
	assert.Equal(t, "Items", tag("Wrapped").WrapperName())
	assert.Equal(t, "a>b", tag("Deep").Wrapper)
	assert.Equal(t, "b", tag("Deep").WrapperName())
	assert.True(t, tag("Text").CharData)
	assert.True(t, tag("Inner").InnerXML)
	assert.True(t, tag("Skipped").Skip)
	assert.False(t, tag("Skipped").IsElement())
	assert.Equal(t, FieldTag{OmitEmpty: true}, tag("Implicit"))
	assert.True(t, tag("Implicit").IsElement())
}

func TestDecoder_Decode(t *testing.T) {
	decoder := &Decoder{}

	request := func(contentType string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", contentType)
		return req
	}

	decoded := func(result string) float64 {
		return testutil.ToFloat64(decodeTotal.WithLabelValues(result))
	}

	t.Run("valid", func(t *testing.T) {
		before := decoded("ok")
		var ping Ping
		handled, err := decoder.Decode(request("application/xml"), nil, []byte(`<ping><message>a</message></ping>`), &ping)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, "a", ping.Message)
		assert.Equal(t, before+1, decoded("ok"))
	})

	t.Run("not bindable", func(t *testing.T) {
		before := decoded("skipped")
		var target map[string]string
		handled, err := decoder.Decode(request("application/xml"), nil, []byte(`<a/>`), &target)
		assert.NoError(t, err)
		assert.False(t, handled)
		assert.Equal(t, before+1, decoded("skipped"))
	})

	t.Run("invalid xml content", func(t *testing.T) {
		before := decoded("error")
		handled, err := decoder.Decode(request("application/soap+xml; charset=utf-8"), nil, []byte(`<ping>`), &Ping{})
		assert.False(t, handled)
		var decodeErr *nonjson.BodyDecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Contains(t, decodeErr.Msg, "XML syntax error")
		assert.Equal(t, before+1, decoded("error"))
	})

	t.Run("invalid non xml content", func(t *testing.T) {
		failed, skipped := decoded("error"), decoded("skipped")
		handled, err := decoder.Decode(request("application/json"), nil, []byte(`{"message":"a"}`), &Ping{})
		assert.NoError(t, err)
		assert.False(t, handled)
		assert.Equal(t, failed, decoded("error"))
		assert.Equal(t, skipped+1, decoded("skipped"))
	})

	t.Run("embedded", func(t *testing.T) {
		var ping Ping
		spec := &chain.BodySpec{Embed: true, Alias: "wrapper"}
		handled, err := decoder.Decode(request("text/xml"), spec, []byte(`<wrapper><ping><message>e</message></ping></wrapper>`), &ping)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, "e", ping.Message)
	})
}

type stubParser struct {
	*XMLParser
}

func TestDecoder_Parser(t *testing.T) {
	created := 0
	decoder := &Decoder{ParserFactory: func() Parser {
		created++
		return stubParser{NewParser()}
	}}

	first := decoder.Parser()
	assert.Same(t, first.(stubParser).XMLParser, decoder.Parser().(stubParser).XMLParser)
	assert.Equal(t, 1, created)

	assert.IsType(t, &XMLParser{}, (&Decoder{}).Parser())
}

func TestBindable(t *testing.T) {
	var ping Ping
	var text string
	var list []Ping
	var generic any
	var mapping map[string]any

	assert.True(t, Bindable(&ping))
	assert.True(t, Bindable(&text))
	assert.True(t, Bindable(&list))
	assert.False(t, Bindable(ping))
	assert.False(t, Bindable(nil))
	assert.False(t, Bindable((*Ping)(nil)))
	assert.False(t, Bindable(&generic))
	assert.False(t, Bindable(&mapping))
}

func TestIsXMLContentType(t *testing.T) {
	assert.True(t, IsXMLContentType("application/xml"))
	assert.True(t, IsXMLContentType("Text/XML; charset=utf-8"))
	assert.True(t, IsXMLContentType("application/atom+xml"))
	assert.False(t, IsXMLContentType("application/json"))
	assert.False(t, IsXMLContentType(""))
}

func TestResponse(t *testing.T) {
	assert.Equal(t, "application/xml", AppResponse.ContentType())
	assert.Equal(t, "text/xml", TextResponse.ContentType())
	assert.Same(t, AppResponse, DefaultResponse)
	assert.Same(t, AppResponse.Serializer(), AppResponse.Serializer())

	soap := NewResponse("application/soap+xml")
	soap.SerializerFactory = func() Serializer { return &XMLSerializer{} }
	assert.Equal(t, "application/soap+xml", soap.ContentType())

	rendered := func(result string) float64 {
		return testutil.ToFloat64(renderTotal.WithLabelValues("application/soap+xml", result))
	}

	content, err := soap.Render(&Pong{Message: "p"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rendered("ok"))
	assert.Equal(t, `<pong xmlns="urn:pong"><message>p</message></pong>`, string(content))

	content, err = soap.Render(nil)
	assert.NoError(t, err)
	assert.Empty(t, content)
	assert.Equal(t, 2.0, rendered("ok"))

	failing := NewResponse("application/soap+xml")
	failing.SerializerFactory = func() Serializer { return failingSerializer{} }
	_, err = failing.Render(&Pong{})
	assert.Error(t, err)
	assert.Equal(t, 1.0, rendered("error"))
	assert.Equal(t, 2.0, rendered("ok"))
}

type failingSerializer struct{}

func (failingSerializer) Marshal(any) ([]byte, error) {
	return nil, errors.New("cannot serialize")
}

func TestRoute_PingPong(t *testing.T) {
	router := chain.New()
	Setup(router)

	POST(router, "/ping", func(ctx *chain.Context, in *Ping) (*Pong, error) {
		return &Pong{Message: in.Message}, nil
	})

	w := perform(router, http.MethodPost, "/ping", "application/xml", `<ping><message>hello</message></ping>`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, xml.Header+`<pong xmlns="urn:pong"><message>hello</message></pong>`, w.Body.String())

	route := router.Routes()[0]
	require.NotNil(t, route.Body)
	assert.Equal(t, reflect.TypeOf(Ping{}), route.Body.Type)
	assert.Equal(t, "application/xml", route.Body.MediaType)
	assert.Equal(t, reflect.TypeOf(&Pong{}), route.ResponseModel)
}

func TestRoute_Errors(t *testing.T) {
	router := chain.New()
	Setup(router)

	POST(router, "/ping", func(ctx *chain.Context, in *Ping) (*Pong, error) {
		return &Pong{Message: in.Message}, nil
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		code        int
		detail      string
	}{
		{"malformed xml", "application/xml", `<ping><message>`, http.StatusBadRequest, "XML syntax error"},
		{"malformed text/xml", "text/xml", `<ping`, http.StatusBadRequest, "XML syntax error"},
		{"not xml", "text/plain", `<ping`, http.StatusUnprocessableEntity, "model_type"},
		{"empty", "application/xml", ``, http.StatusUnprocessableEntity, "Field required"},
		{"wrong root", "application/xml", `<pong/>`, http.StatusBadRequest, "expected element type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/ping", tt.contentType, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), tt.detail)
		})
	}
}

func TestRoute_BodyOptions(t *testing.T) {
	router := chain.New()

	var received *Ping
	POST(router, "/embed", func(ctx *chain.Context, in *Ping) (*Pong, error) {
		received = in
		if in == nil {
			return &Pong{Message: "none"}, nil
		}
		return &Pong{Message: in.Message}, nil
	}, Body(Embed(), Alias("payload"), Optional(), MediaType("text/xml"), Title("Ping")),
		chain.ResponseClass(TextResponse))

	w := perform(router, http.MethodPost, "/embed", "text/xml", `<payload><ping><message>in</message></ping></payload>`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `<message>in</message>`)
	require.NotNil(t, received)

	w = perform(router, http.MethodPost, "/embed", "text/xml", ``)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, received)
	assert.Contains(t, w.Body.String(), `<message>none</message>`)

	w = perform(router, http.MethodPost, "/embed", "text/xml", `<ping><message>in</message></ping>`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	spec := router.Routes()[0].Body
	assert.True(t, spec.Embed)
	assert.Equal(t, "payload", spec.EmbedName())
	assert.False(t, spec.Required)
	assert.Equal(t, "text/xml", spec.MediaType)
	assert.Equal(t, "Ping", spec.Title)
	assert.Equal(t, reflect.TypeOf(Ping{}), spec.Type)
}

func TestRoute_Constraints(t *testing.T) {
	router := chain.New()
	Setup(router)

	PUT(router, "/count", func(ctx *chain.Context, in *int) (int, error) {
		return *in * 2, nil
	}, Body(Gt(0), Le(10)))

	w := perform(router, http.MethodPut, "/count", "application/xml", `<int>4</int>`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xml.Header+`<int>8</int>`, w.Body.String())

	w = perform(router, http.MethodPut, "/count", "application/xml", `<int>11</int>`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRoute_ResponseError(t *testing.T) {
	router := chain.New()
	failing := NewResponse(MediaTypeApplication)
	failing.SerializerFactory = func() Serializer { return failingSerializer{} }

	GET(router, "/fail", func(ctx *chain.Context, _ *nonjson.NoBody) (*Pong, error) {
		return &Pong{}, nil
	}, chain.ResponseClass(failing))

	w := perform(router, http.MethodGet, "/fail", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBindingXML(t *testing.T) {
	router := chain.New()
	router.POST("/bind", func(ctx *chain.Context) error {
		var ping Ping
		if err := ctx.ShouldBind(&ping); err != nil {
			return err
		}
		return ctx.Send(http.StatusOK, "text/plain", []byte(ping.Message))
	})

	assert.Equal(t, BindingXML, chain.BindingFor("application/rss+xml"))

	w := perform(router, http.MethodPost, "/bind", "text/xml", `<ping><message>bound</message></ping>`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bound", w.Body.String())

	w = perform(router, http.MethodPost, "/bind", "application/xml", `<ping>`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
