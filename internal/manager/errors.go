package manager

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"authd/internal/store"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("connection manager closed")

// configurationError signals a setup problem that retrying cannot fix.
type configurationError struct{ msg string }

func (e configurationError) Error() string { return "configuration error: " + e.msg }

// ErrConfiguration constructs a configuration error.
func ErrConfiguration(msg string) error { return configurationError{msg: msg} }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	var ce configurationError
	return errors.As(err, &ce)
}

// ConnectError records a failed connect attempt. It is transient: the manager
// retries in the background after recording it.
type ConnectError struct {
	Message string
	Code    string
	// Trace is the cause chain, truncated to maxTraceLen bytes.
	Trace string
	Err   error
}

func (e *ConnectError) Error() string { return e.Message }

func (e *ConnectError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt ran out of time.
func (e *ConnectError) Timeout() bool { return e.Code == store.CodeTimeout }

func newConnectError(err error) *ConnectError {
	ce := &ConnectError{Message: err.Error(), Code: store.CodeUnreachable, Trace: traceOf(err), Err: err}
	var se *store.Error
	switch {
	case errors.As(err, &se) && se.Code != "":
		ce.Code = se.Code
	case errors.Is(err, context.DeadlineExceeded):
		ce.Code = store.CodeTimeout
	}
	return ce
}

// traceOf flattens the unwrap chain of err into one line.
func traceOf(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		parts = append(parts, e.Error())
	}
	t := strings.Join(parts, " <- ")
	if len(t) > maxTraceLen {
		cut := maxTraceLen
		for cut > 0 && !utf8.RuneStart(t[cut]) {
			cut--
		}
		t = t[:cut] + "..."
	}
	return t
}

// IsConnectError reports whether err came from a failed connect attempt.
func IsConnectError(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce)
}

// notReadyError is returned by the gate when the store cannot serve the
// request yet. The HTTP layer maps it to 503.
type notReadyError struct{ cause error }

func (e notReadyError) Error() string {
	if e.cause != nil {
		return "database not ready: " + e.cause.Error()
	}
	return "database not ready"
}

func (e notReadyError) Unwrap() error { return e.cause }

func (e notReadyError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrNotReady constructs a not-ready error wrapping cause (may be nil).
func ErrNotReady(cause error) error { return notReadyError{cause: cause} }

// IsNotReady reports whether err indicates the store is not ready.
func IsNotReady(err error) bool {
	var nr notReadyError
	return errors.As(err, &nr)
}
