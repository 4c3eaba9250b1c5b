package nonjson

import (
	"errors"
	"net/http"
	"reflect"

	chain "github.com/nidorx/chain-xml"
)

// ErrParsingBody message sent to the client when the body cannot be read or decoded for an unknown reason
const ErrParsingBody = "There was an error parsing the body"

// NoBody is the input type of endpoints without a request body
type NoBody struct{}

// Handler a typed endpoint. in is nil when the body is optional and the request has none.
type Handler[In, Out any] func(ctx *chain.Context, in *In) (Out, error)

// DecodeFunc decodes the request body into target, see Decoder
type DecodeFunc func(req *http.Request, spec *chain.BodySpec, body []byte, target any) (handled bool, err error)

// Endpoint describes how a family of typed endpoints reads its request bodies
type Endpoint struct {
	// Decode the body, defaults to RunDecoder (the default registry)
	Decode DecodeFunc

	// MediaType documented for bodies without an explicit BodySpec
	MediaType string

	// Options applied to every route before the route specific options
	Options []chain.RouteOption
}

// Raw is written as is, bypassing the route renderer
type Raw struct {
	Content     []byte
	ContentType string
	StatusCode  int
}

type statusKey struct{}

// SetStatus overrides the status code of the rendered endpoint result
func SetStatus(ctx *chain.Context, code int) {
	ctx.Set(statusKey{}, code)
}

// StatusOf returns the status code set with SetStatus, 0 if none
func StatusOf(ctx *chain.Context) int {
	if v, exists := ctx.Get(statusKey{}); exists {
		if code, ok := v.(int); ok {
			return code
		}
	}
	return 0
}

var (
	noBodyType = reflect.TypeOf(NoBody{})
	rawType    = reflect.TypeOf(Raw{})
)

// Handle registers a typed endpoint. The request body is decoded with the endpoint decoder into a new In and the
// handler result is rendered with the route renderer (chain.ResponseClass, Router.DefaultRenderer or JSON).
func Handle[In, Out any](group chain.Group, endpoint Endpoint, method, path string, handler Handler[In, Out], options ...chain.RouteOption) *chain.Route {
	decode := endpoint.Decode
	if decode == nil {
		decode = RunDecoder
	}

	inType := reflect.TypeOf((*In)(nil)).Elem()
	outType := reflect.TypeOf((*Out)(nil)).Elem()
	hasBody := inType != noBodyType

	handle := func(ctx *chain.Context) error {
		var in *In
		if hasBody {
			var err error
			if in, err = readBody[In](ctx, decode); err != nil {
				return err
			}
		}

		out, err := handler(ctx, in)
		if err != nil {
			return err
		}
		return respond(ctx, out)
	}

	route := group.Handle(method, path, handle, append(append([]chain.RouteOption{}, endpoint.Options...), options...)...)

	if hasBody {
		if route.Body == nil {
			route.Body = &chain.BodySpec{MediaType: endpoint.MediaType, Required: true}
		}
		if route.Body.MediaType == "" {
			route.Body.MediaType = endpoint.MediaType
		}
		route.Body.Type = inType
	}
	if route.ResponseModel == nil && outType.Kind() != reflect.Interface && derefType(outType) != rawType {
		route.ResponseModel = outType
	}
	return route
}

func readBody[In any](ctx *chain.Context, decode DecodeFunc) (*In, error) {
	spec := ctx.Route().Body
	if spec == nil {
		spec = &chain.BodySpec{Required: true}
	}

	body, err := ctx.BodyBytes()
	if err != nil {
		return nil, chain.NewHTTPError(http.StatusBadRequest, ErrParsingBody)
	}

	if len(body) == 0 {
		if spec.Required {
			return nil, chain.NewValidationError(chain.FieldError{
				Loc:  []any{"body"},
				Msg:  "Field required",
				Type: "missing",
			})
		}
		return nil, nil
	}

	in := new(In)
	handled, err := decode(ctx.Request, spec, body, in)
	if err != nil {
		var decodeErr *BodyDecodeError
		if errors.As(err, &decodeErr) {
			return nil, decodeErr
		}
		return nil, chain.NewHTTPError(http.StatusBadRequest, ErrParsingBody)
	}
	if !handled {
		return nil, chain.NewValidationError(chain.FieldError{
			Loc:  []any{"body"},
			Msg:  "Input should be a valid " + typeName(reflect.TypeOf(in).Elem()),
			Type: "model_type",
		})
	}

	if err = chain.ValidateBody(spec, *in); err != nil {
		return nil, err
	}
	if err = chain.Validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

// respond renders the endpoint result, unless the handler already wrote the response
func respond(ctx *chain.Context, out any) error {
	if ctx.WriteStarted() {
		return nil
	}

	switch raw := out.(type) {
	case Raw:
		return writeRaw(ctx, &raw)
	case *Raw:
		if raw != nil {
			return writeRaw(ctx, raw)
		}
	}

	route := ctx.Route()
	status := route.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if code := StatusOf(ctx); code != 0 {
		status = code
	}

	return ctx.Render(status, route.Renderer(), out)
}

func writeRaw(ctx *chain.Context, raw *Raw) error {
	status := raw.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return ctx.Send(status, raw.ContentType, raw.Content)
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	if name := derefType(t).Name(); name != "" {
		return name
	}
	return t.String()
}
