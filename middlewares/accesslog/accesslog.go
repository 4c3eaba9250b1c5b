// Package accesslog writes one zerolog line per request once the response is sent.
package accesslog

import (
	"net/http"
	"time"

	chain "github.com/nidorx/chain-xml"
	"github.com/nidorx/chain-xml/middlewares/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Middleware struct {
	// Logger defaults to the global zerolog logger
	Logger *zerolog.Logger
}

func New(logger zerolog.Logger) *Middleware {
	return &Middleware{Logger: &logger}
}

func (m *Middleware) Handle(ctx *chain.Context, next func() error) error {
	start := time.Now()
	if err := ctx.AfterSend(func() { m.log(ctx, start) }); err != nil {
		return err
	}
	return next()
}

func (m *Middleware) log(ctx *chain.Context, start time.Time) {
	logger := m.Logger
	if logger == nil {
		logger = &log.Logger
	}

	status := http.StatusOK
	if spy, ok := ctx.Writer.(*chain.ResponseWriterSpy); ok && spy.Status() != 0 {
		status = spy.Status()
	}

	var event *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		event = logger.Error()
	case status >= http.StatusBadRequest:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event.
		Str("method", ctx.Method()).
		Str("host", ctx.Host()).
		Str("path", ctx.URL().Path).
		Str("route", ctx.MatchedRoutePath).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("request_id", requestid.Get(ctx)).
		Str("content_type", ctx.Header().Get("Content-Type")).
		Str("remote_ip", ctx.Ip()).
		Str("user_agent", ctx.UserAgent()).
		Msg("request")
}
