package chain

import (
	"errors"
	"net/http"
)

// AlreadySentError Error raised when trying to modify or send an already sent response
var AlreadySentError = errors.New("the response was already sent")

// ResponseWriterSpy tracks whether the response was started and runs the before/after send hooks
type ResponseWriterSpy struct {
	http.ResponseWriter
	wrote           bool
	writeCalled     bool
	status          int
	hooksBeforeSend []func()
	hooksAfterSend  []func()
}

func (w *ResponseWriterSpy) WriteHeader(status int) {
	if w.wrote {
		return
	}
	w.status = status
	w.runBeforeHook()
	w.ResponseWriter.WriteHeader(status)
	if !w.writeCalled {
		w.runAfterHook()
	}
}

func (w *ResponseWriterSpy) Write(b []byte) (int, error) {
	w.writeCalled = true
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.runBeforeHook()
	i, err := w.ResponseWriter.Write(b)
	w.runAfterHook()
	return i, err
}

// Status returns the status code sent, 0 while nothing was sent
func (w *ResponseWriterSpy) Status() int {
	return w.status
}

// Flush implements http.Flusher when the wrapped writer does
func (w *ResponseWriterSpy) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap allows http.ResponseController to reach the wrapped writer
func (w *ResponseWriterSpy) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *ResponseWriterSpy) beforeSend(callback func()) error {
	if w.wrote {
		return AlreadySentError
	}
	w.hooksBeforeSend = append(w.hooksBeforeSend, callback)
	return nil
}

func (w *ResponseWriterSpy) afterSend(callback func()) error {
	if w.wrote {
		return AlreadySentError
	}
	w.hooksAfterSend = append(w.hooksAfterSend, callback)
	return nil
}

func (w *ResponseWriterSpy) runBeforeHook() {
	if w.wrote {
		return
	}
	w.wrote = true
	for i := len(w.hooksBeforeSend) - 1; i >= 0; i-- {
		w.hooksBeforeSend[i]()
	}
	w.hooksBeforeSend = nil
}

func (w *ResponseWriterSpy) runAfterHook() {
	for i := len(w.hooksAfterSend) - 1; i >= 0; i-- {
		w.hooksAfterSend[i]()
	}
	w.hooksAfterSend = nil
}
