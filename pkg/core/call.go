// core/call.go
package core

import (
	"context"
	"errors"
	"net/http"
)

// Call describes the request behind one bridged invocation. A function that
// declares a leading context.Context receives it through CallFrom; it is never
// stored on the function itself, so concurrent calls do not share it.
type Call struct {
	Module string
	Export string

	// Request is the inbound HTTP request.
	Request *http.Request

	// Writer may be used to set response headers. The body is written by the
	// bridge from the function's result.
	Writer http.ResponseWriter
}

type callKey struct{}

// CallFrom returns the call carried by ctx, if any.
func CallFrom(ctx context.Context) (*Call, bool) {
	c, ok := ctx.Value(callKey{}).(*Call)
	return c, ok && c != nil
}

func withCall(ctx context.Context, c *Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// Error is a failure that maps directly to an HTTP status code. Exported
// functions may return one to choose the status of the response.
type Error struct {
	Status int
	// Message is a short, human-readable description suitable for an HTTP error body.
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "bridge: error: <nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns an *Error, or err unchanged if it already is one.
func NewError(status int, message string, err error) error {
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return &Error{Status: status, Message: message, Cause: err}
}

func badRequest(err error) error { return NewError(http.StatusBadRequest, "", err) }
