package chain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsupportedMediaType is returned by bindings when no decoder accepts the request content type
var ErrUnsupportedMediaType = NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported Media Type")

// StatusCoder is implemented by errors that define the response status code
type StatusCoder interface {
	StatusCode() int
}

// Detailer is implemented by errors that define the "detail" of the error response
type Detailer interface {
	Detail() any
}

// HTTPError an error with a status code and a detail sent to the client
type HTTPError struct {
	Code    int
	Message any
}

func NewHTTPError(code int, detail any) *HTTPError {
	return &HTTPError{Code: code, Message: detail}
}

func (e *HTTPError) Error() string {
	if e.Message == nil {
		return http.StatusText(e.Code)
	}
	return fmt.Sprint(e.Message)
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) Detail() any {
	if e.Message == nil {
		return http.StatusText(e.Code)
	}
	return e.Message
}

// FieldError a single validation failure. Loc is the path of the invalid value, ex. ["body", "items", 0].
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError the request data does not match the expected model (422)
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(errs ...FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		loc := make([]string, 0, len(fe.Loc))
		for _, l := range fe.Loc {
			loc = append(loc, fmt.Sprint(l))
		}
		messages = append(messages, strings.Join(loc, ".")+": "+fe.Msg)
	}
	return "validation error: " + strings.Join(messages, "; ")
}

func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *ValidationError) Detail() any {
	return e.Errors
}

// DefaultErrorHandler writes the error as a JSON document {"detail": ...}.
//
// Errors implementing StatusCoder define the status, other errors are logged and answered with 500.
func DefaultErrorHandler(ctx *Context, err error) {
	if ctx.WriteStarted() {
		logger.Error().Err(err).Str("path", ctx.MatchedRoutePath).Msg("error after the response was sent")
		return
	}

	code := http.StatusInternalServerError
	var detail any = http.StatusText(code)

	var sc StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
		detail = err.Error()
	} else {
		logger.Error().Err(err).Str("path", ctx.MatchedRoutePath).Msg("unhandled error")
	}

	var dp Detailer
	if errors.As(err, &dp) {
		detail = dp.Detail()
	}

	if rerr := ctx.Render(code, JSONRenderer, map[string]any{"detail": detail}); rerr != nil {
		logger.Error().Err(rerr).Msg("unable to render error")
	}
}
