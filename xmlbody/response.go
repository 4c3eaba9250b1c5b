package xmlbody

import (
	"sync"
)

// Response a chain.Renderer writing endpoint results as XML
type Response struct {
	// SerializerFactory creates the shared Serializer, defaults to NewSerializer
	SerializerFactory func() Serializer

	mediaType  string
	once       sync.Once
	serializer Serializer
}

var (
	// AppResponse renders "application/xml"
	AppResponse = NewResponse(MediaTypeApplication)

	// TextResponse renders "text/xml"
	TextResponse = NewResponse(MediaTypeText)

	DefaultResponse = AppResponse
)

func NewResponse(mediaType string) *Response {
	return &Response{mediaType: mediaType}
}

func (r *Response) ContentType() string {
	return r.mediaType
}

// Serializer returns the serializer shared by every response, created on first use
func (r *Response) Serializer() Serializer {
	r.once.Do(func() {
		factory := r.SerializerFactory
		if factory == nil {
			factory = func() Serializer { return NewSerializer() }
		}
		r.serializer = factory()
	})
	return r.serializer
}

func (r *Response) Render(v any) ([]byte, error) {
	content, err := r.Serializer().Marshal(v)
	if err != nil {
		renderTotal.WithLabelValues(r.mediaType, "error").Inc()
		logger.Error().Err(err).Str("media_type", r.mediaType).Msg("failed to render xml")
		return nil, err
	}
	renderTotal.WithLabelValues(r.mediaType, "ok").Inc()
	return content, nil
}
