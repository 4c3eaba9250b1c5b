// Package nonjson lets typed endpoints read request bodies and render results in formats other than JSON.
package nonjson

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/pkg"
	"github.com/rs/zerolog/log"
)

var logger = log.With().Str("package", "chain.nonjson").Logger()

// ErrDecodingFailed message sent to the client when a decoder fails unexpectedly
const ErrDecodingFailed = "body decoding failed."

// BodyDecodeError the body is in a format understood by a decoder but could not be decoded.
// Msg is sent to the client with status 400.
type BodyDecodeError struct {
	Msg string
	Err error
}

func NewBodyDecodeError(msg string, err error) *BodyDecodeError {
	return &BodyDecodeError{Msg: msg, Err: err}
}

func (e *BodyDecodeError) Error() string {
	return e.Msg
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

func (e *BodyDecodeError) StatusCode() int {
	return http.StatusBadRequest
}

// Decoder decodes request bodies of the content types it supports.
//
// Decode returns handled=false (and no error) when the body is not in a format it understands, letting the next
// decoder try. A body in its format that cannot be decoded is reported with a *BodyDecodeError.
type Decoder interface {
	SupportedContentTypes() []string
	Decode(req *http.Request, spec *chain.BodySpec, body []byte, target any) (handled bool, err error)
}

// Registry of body decoders, indexed by content type
type Registry struct {
	mutex    sync.RWMutex
	decoders []Decoder
	store    pkg.MediaTypeStore[*[]Decoder]
}

// Register adds a decoder for each of its supported content types
func (r *Registry) Register(decoder Decoder) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, contentType := range decoder.SupportedContentTypes() {
		if list, found := r.store.Get(contentType); found {
			*list = append(*list, decoder)
			continue
		}
		if err := r.store.Insert(contentType, &[]Decoder{decoder}); err != nil {
			return fmt.Errorf("nonjson: invalid content type %q: %w", contentType, err)
		}
	}
	r.decoders = append(r.decoders, decoder)
	return nil
}

// Decoders returns the decoders registered for the content type, or every registered decoder when none is.
func (r *Registry) Decoders(contentType string) []Decoder {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []Decoder
	if contentType = chain.MediaType(contentType); contentType != "" {
		for _, list := range r.store.MatchAll(contentType) {
			result = append(result, *list...)
		}
	}
	if len(result) == 0 {
		result = append(result, r.decoders...)
	}
	return result
}

// RunDecoder runs the decoders of the request content type until one of them handles the body.
//
// A *BodyDecodeError is returned as is. Any other failure (error or panic) is logged and reported as a
// *BodyDecodeError with a generic message. handled is false when no decoder understood the body.
func (r *Registry) RunDecoder(req *http.Request, spec *chain.BodySpec, body []byte, target any) (handled bool, err error) {
	for _, decoder := range r.Decoders(req.Header.Get("Content-Type")) {
		if handled, err = safeDecode(decoder, req, spec, body, target); err != nil || handled {
			return
		}
	}
	return false, nil
}

func safeDecode(decoder Decoder, req *http.Request, spec *chain.BodySpec, body []byte, target any) (handled bool, err error) {
	defer func() {
		if rcv := recover(); rcv != nil {
			logger.Error().
				Str("decoder", fmt.Sprintf("%T", decoder)).
				Interface("panic", rcv).
				Msg("body decoder panicked")
			handled, err = false, NewBodyDecodeError(ErrDecodingFailed, fmt.Errorf("panic: %v", rcv))
		}
	}()

	handled, err = decoder.Decode(req, spec, body, target)
	if err != nil {
		var decodeErr *BodyDecodeError
		if errors.As(err, &decodeErr) {
			return false, decodeErr
		}
		logger.Error().
			Err(err).
			Str("decoder", fmt.Sprintf("%T", decoder)).
			Msg("body decoder failed")
		return false, NewBodyDecodeError(ErrDecodingFailed, err)
	}
	return handled, nil
}

var defaultRegistry = &Registry{}

// Register adds a decoder to the default registry
func Register(decoder Decoder) error {
	return defaultRegistry.Register(decoder)
}

// Decoders returns the decoders of the default registry for the content type
func Decoders(contentType string) []Decoder {
	return defaultRegistry.Decoders(contentType)
}

// RunDecoder runs the decoders of the default registry
func RunDecoder(req *http.Request, spec *chain.BodySpec, body []byte, target any) (bool, error) {
	return defaultRegistry.RunDecoder(req, spec, body, target)
}
